package component

// ConfigLoader read access to configuration
//
// Components read their own section through it (implemented by config.Environment)
type ConfigLoader interface {
	// Get raw value of a key such as "nacos.config.server-addr"
	Get(key string) interface{}

	// Unmarshal decodes a whole section into v
	//
	// Example:
	//   var props nacos.ConfigProperties
	//   if err := loader.Unmarshal("nacos.config", &props); err != nil {
	//       return err
	//   }
	Unmarshal(key string, v interface{}) error

	// GetString Get string configuration
	GetString(key string) string

	// Get integer configuration
	GetInt(key string) int

	// GetBool Get boolean configuration
	GetBool(key string) bool

	// Check if the configuration item exists
	IsSet(key string) bool
}
