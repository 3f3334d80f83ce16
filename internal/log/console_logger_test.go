package log

import (
	"errors"
	"testing"
)

func TestInfof(t *testing.T) {
	Info("hello %v", "abc")
	Info("hello", "abc")
	Info("hello", errors.New("abc"))
}

func TestWarnf(t *testing.T) {
	Warn("interval %d rejected", 0)
	Warn("duplicate timer", errors.New("save"))
}
