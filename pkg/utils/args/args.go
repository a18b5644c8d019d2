// Package args adapts parser functions to flag.Value.
//
// Example:
//
//	policy := args.Parser(recurring.ParsePolicy).Default(recurring.Every(0))
//	flag.Var(policy, "policy", "when passes run. every[:INTERVAL] or once")
//	flag.Parse()
//
//	policy.Value() // parsed value, or the default.
package args

type Adapter[T interface{ String() string }] struct {
	value     T
	parser    func(string) (T, error)
	isSet     bool
	defaulted bool
}

// String returns the value set, or the default value.
//
// Before any value or default is given, it is empty.
func (i *Adapter[T]) String() string {
	if i == nil || i.parser == nil {
		// flag package calls String of zero value to detect default.
		return ""
	}
	if i.isSet || i.defaulted {
		return i.value.String()
	}
	return ""
}

func (i *Adapter[T]) Set(s string) error {
	v, err := i.parser(s)
	if err != nil {
		return err
	}
	i.isSet = true
	i.value = v
	return nil
}

// Default sets the value used until Set is called.
func (i *Adapter[T]) Default(v T) *Adapter[T] {
	if !i.isSet {
		i.value = v
		i.defaulted = true
	}
	return i
}

func (i Adapter[T]) Value() T {
	return i.value
}

// IsSet reports whether the value has been parsed, not defaulted.
func (i Adapter[T]) IsSet() bool {
	return i.isSet
}

func Parser[T interface{ String() string }](parser func(string) (T, error)) *Adapter[T] {
	return &Adapter[T]{parser: parser}
}
