package console

import "fmt"

// Console is the per-run diagnostic sink workflow modes and the Run Helper
// report progress to.
type Console interface {
	Info(message string)
	Warn(message string)
}

// Prompter collects a user's decision to continue a multi-commit run after
// the destination writer requests confirmation (WriterResult ==
// ResultPromptToContinue).
type Prompter interface {
	ConfirmContinue(prompt string) (bool, error)
}

// writerConsole adapts an io.Writer-shaped sink into a Console, matching
// the teacher's plain fmt.Fprintf(environment.Output, ...) reporting style.
type writerConsole struct {
	infoWriter func(string)
	warnWriter func(string)
}

// NewFuncConsole builds a Console from two plain callback functions.
func NewFuncConsole(infoWriter func(string), warnWriter func(string)) Console {
	return writerConsole{infoWriter: infoWriter, warnWriter: warnWriter}
}

func (console writerConsole) Info(message string) {
	if console.infoWriter != nil {
		console.infoWriter(message)
	}
}

func (console writerConsole) Warn(message string) {
	if console.warnWriter != nil {
		console.warnWriter(message)
	}
}

// prefixedConsole decorates another Console, prefixing every message — the
// per-change progress annotation ITERATIVE uses (§4.3.2 step 5b,
// "prefixedConsole"), where the prefix is the change's revision in
// brackets, e.g. "[abc123] ".
type prefixedConsole struct {
	delegate Console
	prefix   string
}

// NewPrefixed wraps delegate so every message is prefixed.
func NewPrefixed(delegate Console, prefix string) Console {
	return prefixedConsole{delegate: delegate, prefix: prefix}
}

func (console prefixedConsole) Info(message string) {
	console.delegate.Info(fmt.Sprintf("%s%s", console.prefix, message))
}

func (console prefixedConsole) Warn(message string) {
	console.delegate.Warn(fmt.Sprintf("%s%s", console.prefix, message))
}
