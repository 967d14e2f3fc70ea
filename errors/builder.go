package errors

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrorBuilder accumulates hints, context and an exit code for an error.
type ErrorBuilder struct {
	err       error
	hints     []string
	context   map[string]interface{}
	exitCode  *int
	sentinels []error
}

// Build starts a builder for err. When err wraps nothing it is also recorded as a sentinel, so the result
// still matches it after hints and context are layered on.
func Build(err error) *ErrorBuilder {
	builder := &ErrorBuilder{err: err}

	if err != nil && errors.UnwrapOnce(err) == nil {
		builder.sentinels = append(builder.sentinels, err)
	}

	return builder
}

// Wrap starts a builder for sentinel caused by cause. The message is "<sentinel>: <cause>".
func Wrap(sentinel error, cause error) *ErrorBuilder {
	if cause == nil {
		return Build(sentinel)
	}
	return &ErrorBuilder{
		err:       fmt.Errorf("%w: %w", sentinel, cause),
		sentinels: []error{sentinel},
	}
}

// WithHint adds a line printed under the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hints = append(b.hints, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hints = append(b.hints, fmt.Sprintf(format, args...))
	return b
}

// WithExplanation adds a paragraph printed after the message.
func (b *ErrorBuilder) WithExplanation(explanation string) *ErrorBuilder {
	b.err = errors.WithDetail(b.err, explanation)
	return b
}

func (b *ErrorBuilder) WithExplanationf(format string, args ...interface{}) *ErrorBuilder {
	return b.WithExplanation(fmt.Sprintf(format, args...))
}

// WithContext records a key/value shown in verbose output and sent to Sentry. Never pass credentials.
func (b *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if b.context == nil {
		b.context = make(map[string]interface{})
	}
	b.context[key] = value
	return b
}

// WithExitCode sets the process exit code for the error.
func (b *ErrorBuilder) WithExitCode(code int) *ErrorBuilder {
	b.exitCode = &code
	return b
}

// Err returns the error with hints, safe context, sentinel marks and exit code applied, in that order.
func (b *ErrorBuilder) Err() error {
	if b.err == nil {
		return nil
	}

	err := b.err
	for _, hint := range b.hints {
		err = errors.WithHint(err, hint)
	}
	err = withSafeContext(err, b.context)
	for _, sentinel := range b.sentinels {
		err = errors.Mark(err, sentinel)
	}

	if b.exitCode != nil {
		err = WithExitCode(err, *b.exitCode)
	}
	return err
}

// withSafeContext attaches context as one "k1=%s k2=%s" safe detail, keys in lexical order.
func withSafeContext(err error, context map[string]interface{}) error {
	if len(context) == 0 {
		return err
	}

	keys := lo.Keys(context)
	slices.Sort(keys)

	format := make([]string, len(keys))
	values := make([]interface{}, len(keys))
	for i, key := range keys {
		format[i] = key + "=%s"
		values[i] = errors.Safe(context[key])
	}
	return errors.WithSafeDetails(err, strings.Join(format, " "), values...)
}
