package nacos

import "github.com/KOMKZ/go-yogan-nacos/errcode"

// ModuleCode error code module of the nacos package
const ModuleCode = 60

var (
	// ErrBootConfig fetching configuration or creating a client failed, startup must abort
	ErrBootConfig = errcode.Register(errcode.New(ModuleCode, 1, "nacos", "error.nacos.boot_config", "unable to get nacos config"))

	// ErrInvalidProperties nacos.config section failed to bind or validate
	ErrInvalidProperties = errcode.Register(errcode.New(ModuleCode, 2, "nacos", "error.nacos.invalid_properties", "invalid nacos config properties"))

	// ErrParseContent content does not match its declared type
	ErrParseContent = errcode.Register(errcode.New(ModuleCode, 3, "nacos", "error.nacos.parse_content", "parse nacos config content failed"))

	// ErrAlreadyActivated pending sources were activated before
	ErrAlreadyActivated = errcode.Register(errcode.New(ModuleCode, 4, "nacos", "error.nacos.already_activated", "pending nacos sources already activated"))

	// ErrPublishDeferred flushing deferred sources failed
	ErrPublishDeferred = errcode.Register(errcode.New(ModuleCode, 5, "nacos", "error.nacos.publish_deferred", "publish deferred nacos sources failed"))

	// ErrAuthFailed backend rejected the credentials, retrying cannot help
	ErrAuthFailed = errcode.Register(errcode.New(ModuleCode, 6, "nacos", "error.nacos.auth_failed", "config backend rejected credentials"))
)

// bootConfigError wraps a fetch failure with the offending parameter set
func bootConfigError(props Properties, dataID, group string, cause error) error {
	return ErrBootConfig.
		WithMsgf("unable to get nacos config, data-id: %s, group: %s", dataID, group).
		WithData("properties", props.Masked()).
		WithData("data_id", dataID).
		WithData("group", group).
		Wrap(cause)
}
