package retry

// MultiError 多次尝试失败的错误聚合
type MultiError struct {
	Errors   []error
	Attempts int
}

// Error 返回最后一次的错误
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "retry failed: no errors"
	}
	return e.Errors[len(e.Errors)-1].Error()
}

// Unwrap 所有尝试的错误，errors.Is 可以匹配任意一次
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// LastError 最后一次的错误
func (e *MultiError) LastError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
