// Package config holds the run configuration of the lvlbfs command: the
// defaults, an optional YAML file and the validation applied after command
// line flags are merged in.
//
//	input: graphs/road.mtx
//	group_size: 128
//	device: 0
//	prefer_cpu: false
//	source: 0
//	iterations: 10
//	undirected: true
//	no_check: false
//	strict: true
//	metrics_file: run.prom
//
// Every failure is classified fault.Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvlbfs/fault"
)

// Config is one run of the BFS benchmark.
type Config struct {
	// Input is the Matrix Market file.
	Input string `yaml:"input" validate:"required"`
	// GroupSize overrides the work-group size; 0 is automatic.
	GroupSize int `yaml:"group_size" validate:"gte=0"`
	// Device is the index among devices of the selected class.
	Device int `yaml:"device" validate:"gte=0"`
	// PreferCPU selects the CPU-class device instead of the GPU-class one.
	PreferCPU bool `yaml:"prefer_cpu"`
	// Source is the 0-based source vertex.
	Source int `yaml:"source" validate:"gte=0"`
	// Iterations is the number of engine trials.
	Iterations int `yaml:"iterations" validate:"gte=1"`
	// Undirected forces symmetrization of a general matrix.
	Undirected bool `yaml:"undirected"`
	Verbose    bool `yaml:"verbose"`
	// NoCheck skips the sequential reference and comparison.
	NoCheck bool `yaml:"no_check"`
	// Strict turns verification mismatches into a failing exit.
	Strict bool `yaml:"strict"`
	// MetricsFile, when set, receives the Prometheus text exposition of the run.
	MetricsFile string `yaml:"metrics_file"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{Iterations: 1}
}

// Load reads path over Default. Unknown keys are rejected. The result is not
// validated; merge flags first, then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fault.New(fault.Config, "load-config", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fault.New(fault.Config, "load-config", fmt.Errorf("%s: %w", path, err))
	}

	return cfg, nil
}

// Validate checks field constraints and reports every violated one.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fault.New(fault.Config, "validate-config", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}

	return fault.Configf("validate-config", "%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag())
	}
}
