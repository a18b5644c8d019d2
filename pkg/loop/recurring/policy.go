package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashsync/dashsync/pkg/loop"
)

// ParsePolicy parses a policy expression.
//
// syntax: every[:INTERVAL]|once
//
// "every" without INTERVAL is Every(0). Use Defaulted to fill the interval.
func ParsePolicy(s string) (Policy, error) {
	typ, param, ok := strings.Cut(s, ":")
	switch typ {
	case "every":
		if !ok || param == "" {
			return Every(0), nil
		}

		interval, err := time.ParseDuration(param)
		if err != nil {
			return nil, fmt.Errorf(`failed to parse: %s as "every:INTERVAL": %w`, s, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf(`interval should be positive: %s`, s)
		}
		return Every(interval), nil
	case "once":
		if ok {
			return nil, fmt.Errorf("once policy does not take paramters: %s", s)
		}
		return Once(), nil
	}
	return nil, fmt.Errorf("unknown policy name: %s (should be one of -- every|once)", typ)
}

// Policy for loop task behavior.
// How the policy behaves depends on the implementation of Next() method.
type Policy interface {
	// Next decides what the loop does after a run.
	//
	// - changed: the run has changed something.
	//
	// - err: error the run has caused.
	Next(changed bool, err error) loop.Next
	String() string
}

// Run every interval, whether or not the last run has failed.
//
// Errors are not fatal for this policy: the next run is the retry.
func Every(interval time.Duration) Policy {
	return every(interval)
}

type every time.Duration

func (e every) String() string {
	if e == 0 {
		return "every"
	}
	return fmt.Sprintf("every:%s", time.Duration(e).String())
}

func (e every) Next(bool, error) loop.Next {
	return loop.Continue(time.Duration(e))
}

// Run just once, and Break with the error of the run.
func Once() Policy {
	return once
}

type oncePolicy struct{}

func (oncePolicy) String() string {
	return "once"
}

func (oncePolicy) Next(_ bool, err error) loop.Next {
	return loop.Break(err)
}

var once = oncePolicy{} // singleton

// Defaulted returns p, but Every(0) is replaced with Every(interval).
func Defaulted(p Policy, interval time.Duration) Policy {
	if e, ok := p.(every); ok && e == 0 {
		return Every(interval)
	}
	return p
}
