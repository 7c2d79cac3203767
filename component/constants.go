package component

// 组件名称常量
const (
	ComponentConfig = "config"
	ComponentLogger = "logger"
	ComponentEvent  = "event"
	ComponentNacos  = "nacos"
)

// OptionalPrefix marks an optional dependency in DependsOn
const OptionalPrefix = "optional:"
