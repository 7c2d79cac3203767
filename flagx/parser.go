// Package flagx binds tagged option structs to cobra flags
//
// Tags:
//
//	flag:"name,n"     flag name and optional shorthand (mandatory)
//	usage:"..."       help text
//	default:"..."     default value, converted with cast
//	config:"a.b.c"    configuration key the flag overrides (see OverrideArgs)
//	persistent:"true" register on the persistent flag set
package flagx

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

type fieldSpec struct {
	index      int
	name       string
	short      string
	usage      string
	def        string
	configKey  string
	persistent bool
}

func specs(target interface{}) (reflect.Value, []fieldSpec, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("target must be a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	var out []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("flag")
		if tag == "" || !v.Field(i).CanSet() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, fieldSpec{
			index:      i,
			name:       name,
			short:      short,
			usage:      f.Tag.Get("usage"),
			def:        f.Tag.Get("default"),
			configKey:  f.Tag.Get("config"),
			persistent: f.Tag.Get("persistent") == "true",
		})
	}
	return v, out, nil
}

func flagSet(cmd *cobra.Command, s fieldSpec) *pflag.FlagSet {
	if s.persistent {
		return cmd.PersistentFlags()
	}
	return cmd.Flags()
}

// BindFlags registers one flag per tagged field
func BindFlags(cmd *cobra.Command, target interface{}) error {
	v, fields, err := specs(target)
	if err != nil {
		return err
	}
	for _, s := range fields {
		if err := register(flagSet(cmd, s), v.Type().Field(s.index).Type, s); err != nil {
			return fmt.Errorf("bind field %s: %w", v.Type().Field(s.index).Name, err)
		}
	}
	return nil
}

func register(fs *pflag.FlagSet, typ reflect.Type, s fieldSpec) error {
	if typ == durationType {
		def, err := cast.ToDurationE(orZero(s.def))
		if err != nil {
			return err
		}
		fs.DurationP(s.name, s.short, def, s.usage)
		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		fs.StringP(s.name, s.short, s.def, s.usage)
	case reflect.Int:
		def, err := cast.ToIntE(orZero(s.def))
		if err != nil {
			return err
		}
		fs.IntP(s.name, s.short, def, s.usage)
	case reflect.Bool:
		def, err := cast.ToBoolE(orFalse(s.def))
		if err != nil {
			return err
		}
		fs.BoolP(s.name, s.short, def, s.usage)
	case reflect.Slice:
		if typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", typ.Elem().Kind())
		}
		var def []string
		if s.def != "" {
			def = strings.Split(s.def, ",")
		}
		fs.StringSliceP(s.name, s.short, def, s.usage)
	default:
		return fmt.Errorf("unsupported field type: %s", typ.Kind())
	}
	return nil
}

// ParseFlags copies flag values into target
func ParseFlags(cmd *cobra.Command, target interface{}) error {
	v, fields, err := specs(target)
	if err != nil {
		return err
	}
	for _, s := range fields {
		f := lookup(cmd, s.name)
		if f == nil {
			return fmt.Errorf("flag %q not registered", s.name)
		}
		if err := setField(v.Field(s.index), f); err != nil {
			return fmt.Errorf("parse flag %s: %w", s.name, err)
		}
	}
	return nil
}

func lookup(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	if f := cmd.PersistentFlags().Lookup(name); f != nil {
		return f
	}
	return cmd.InheritedFlags().Lookup(name)
}

func setField(field reflect.Value, f *pflag.Flag) error {
	raw := f.Value.String()
	if field.Type() == durationType {
		d, err := cast.ToDurationE(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		sv, ok := f.Value.(pflag.SliceValue)
		if !ok {
			return fmt.Errorf("flag is not a slice")
		}
		field.Set(reflect.ValueOf(append([]string(nil), sv.GetSlice()...)))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// OverrideArgs returns "--key=value" for every changed flag carrying a config tag
// The result feeds the command line property source, so explicit flags win over files and env.
func OverrideArgs(cmd *cobra.Command, target interface{}) ([]string, error) {
	_, fields, err := specs(target)
	if err != nil {
		return nil, err
	}
	var args []string
	for _, s := range fields {
		if s.configKey == "" {
			continue
		}
		f := lookup(cmd, s.name)
		if f == nil || !f.Changed {
			continue
		}
		value := f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			value = strings.Join(sv.GetSlice(), ",")
		}
		args = append(args, "--"+s.configKey+"="+value)
	}
	sort.Strings(args)
	return args, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func orFalse(s string) string {
	if s == "" {
		return "false"
	}
	return s
}
