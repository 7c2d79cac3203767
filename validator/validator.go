// Package validator 统一的 ozzo-validation 校验与错误转换
package validator

import (
	"errors"

	"github.com/KOMKZ/go-yogan-nacos/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validatable 可校验接口
type Validatable interface {
	Validate() error
}

// Validate 调用 v.Validate，失败时包装为 base
// 字段级错误以 "fields" 附加到 Data，嵌套字段用点号连接（ExtConfig.0.DataID）
func Validate(v Validatable, base *errcode.LayeredError) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return base.WithData("fields", Fields(verrs)).Wrap(err)
	}
	return base.Wrap(err)
}

// Fields 展开嵌套的 validation.Errors
func Fields(errs validation.Errors) map[string]string {
	out := make(map[string]string)
	collect("", errs, out)
	return out
}

func collect(prefix string, errs validation.Errors, out map[string]string) {
	for field, err := range errs {
		if err == nil {
			continue
		}
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			collect(key, nested, out)
			continue
		}
		out[key] = err.Error()
	}
}
