package daemon

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// load dashsync daemon config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *DaemonConfig, error:
//
//	When loading success, returns `(*DaemonConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadDaemonConfig(filepath string) (*DaemonConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal parses and validates config.
//
// Misconfigurations are reported as error wrapping ErrInvalidConfig.
func Unmarshal(conf []byte) (out *DaemonConfig, err error) {
	var _out *DaemonConfigMarshall
	if err := yaml.Unmarshal(conf, &_out); err != nil {
		return nil, err
	}
	if _out == nil {
		return nil, fmt.Errorf("%w: empty", ErrInvalidConfig)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrInvalidConfig, r)
		}
	}()
	return TrySeal(_out), nil
}
