package evaluator

// InvalidExpressionError is the error returned for any expression that fails
// to evaluate. Its message is the message of the underlying error.
type InvalidExpressionError struct {
	// Expression is the text that was evaluated.
	Expression string
	// Err is the underlying error.
	Err error
}

func (err *InvalidExpressionError) Error() string {
	return err.Err.Error()
}

func (err *InvalidExpressionError) Unwrap() error {
	return err.Err
}
