package setup

import (
	"os"

	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"
)

// settingsFile YAML 配置文件的顶层结构
type settingsFile struct {
	Timers []Setting `yaml:"timers"`
}

// Load 从 YAML 文件加载定时器配置
func Load(path string) ([]Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "read timer settings %s", path)
	}
	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Annotatef(err, "parse timer settings %s", path)
	}
	return file.Timers, nil
}
