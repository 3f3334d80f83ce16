package env

import (
	"time"
)

//goland:noinspection GoVarAndConstTypeMayBeOmitted,GoCommentStart
var (
	Debug              bool          = false                  //调试模式
	CheckTimerInterval time.Duration = time.Second            //定时器评估周期, 名义上 1s 一轮
	TimerTolerance     time.Duration = 400 * time.Millisecond //吸收 tick 抖动的容差, 提前到达的 tick 整轮丢弃
	//闲置定时器
	InactivityClearInterval time.Duration = 10 * time.Second //两次重置闲置定时器之间的最小间隔
)
