// Package sandbox implements the process-sandbox abstraction from
// spec.md section 4.10: a capability-oriented builder interface over a
// process-isolation backend (bubblewrap), used to run untrusted build
// artifacts under a curated filesystem and environment view.
//
// Grounded on cmd/cpu/exec.go's os/exec invocation style for spawning
// and capturing a child process, and on original_source/src/sandbox.rs
// for the builder's capability set and default-policy construction,
// reimplemented in Go idiom (functional-options-free builder methods
// returning the receiver, os/exec.Cmd for process spawn).
package sandbox

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Kind selects which sandbox backend to materialize from configuration.
type Kind string

const (
	// Disabled produces no sandbox: run executes the binary directly.
	Disabled Kind = "disabled"
	// Inherit produces no sandbox and inherits the current process's
	// full environment and filesystem view.
	Inherit Kind = "inherit"
	// Bubblewrap produces a builder that accumulates bubblewrap
	// command-line arguments.
	Bubblewrap Kind = "bubblewrap"
)

// Config is the external configuration shape from spec.md section 6.
type Config struct {
	Kind       Kind
	AllowRead  []string
	ExtraArgs  []string
}

// ProcessOutput is the captured result of Run.
type ProcessOutput struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Sandbox is the capability-oriented interface spec.md section 9
// describes: {ro_bind, writable_bind, tmpfs, set_env, pass_env, arg,
// run}. Disabled/Inherit backends implement it as no-ops that short
// circuit straight to process execution.
type Sandbox interface {
	ROBind(path string) Sandbox
	WritableBind(path string) Sandbox
	Tmpfs(path string) Sandbox
	SetEnv(key, value string) Sandbox
	PassEnv(key string) Sandbox
	Arg(raw string) Sandbox
	Run(binary string, args ...string) (ProcessOutput, error)
}

// passthroughSandbox backs both Disabled and Inherit: it accumulates no
// state and runs the target binary directly, optionally with the
// current process's environment inherited.
type passthroughSandbox struct {
	inheritEnv bool
	extraEnv   []string
}

func (p *passthroughSandbox) ROBind(string) Sandbox       { return p }
func (p *passthroughSandbox) WritableBind(string) Sandbox { return p }
func (p *passthroughSandbox) Tmpfs(string) Sandbox        { return p }
func (p *passthroughSandbox) Arg(string) Sandbox          { return p }

func (p *passthroughSandbox) SetEnv(key, value string) Sandbox {
	p.extraEnv = append(p.extraEnv, key+"="+value)
	return p
}

func (p *passthroughSandbox) PassEnv(key string) Sandbox {
	if v, ok := os.LookupEnv(key); ok {
		p.extraEnv = append(p.extraEnv, key+"="+v)
	}
	return p
}

func (p *passthroughSandbox) Run(binary string, args ...string) (ProcessOutput, error) {
	cmd := exec.Command(binary, args...)
	if p.inheritEnv {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, p.extraEnv...)
	return runCmd(cmd)
}

// BubblewrapSandbox accumulates bubblewrap ("bwrap") arguments and, on
// Run, spawns bwrap with those arguments followed directly by the target
// binary and its args (no "--" separator is inserted).
type BubblewrapSandbox struct {
	args []string
	env  []string
}

// NewBubblewrap constructs an empty Bubblewrap builder.
func NewBubblewrap() *BubblewrapSandbox {
	return &BubblewrapSandbox{}
}

func (b *BubblewrapSandbox) ROBind(path string) Sandbox {
	b.args = append(b.args, "--ro-bind", path, path)
	return b
}

func (b *BubblewrapSandbox) WritableBind(path string) Sandbox {
	b.args = append(b.args, "--bind", path, path)
	return b
}

func (b *BubblewrapSandbox) Tmpfs(path string) Sandbox {
	b.args = append(b.args, "--tmpfs", path)
	return b
}

func (b *BubblewrapSandbox) SetEnv(key, value string) Sandbox {
	b.args = append(b.args, "--setenv", key, value)
	b.env = append(b.env, key+"="+value)
	return b
}

func (b *BubblewrapSandbox) PassEnv(key string) Sandbox {
	if v, ok := os.LookupEnv(key); ok {
		return b.SetEnv(key, v)
	}
	return b
}

// PassCargoEnv forwards OUT_DIR and every variable whose name begins
// with CARGO or RUSTC or equals TARGET, excluding RUSTC_WRAPPER (whose
// presence would recursively re-enter the analyzer), per spec.md section
// 4.10.
func (b *BubblewrapSandbox) PassCargoEnv() *BubblewrapSandbox {
	b.PassEnv("OUT_DIR")
	b.PassEnv("TARGET")
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if name == "RUSTC_WRAPPER" {
			continue
		}
		if strings.HasPrefix(name, "CARGO") || strings.HasPrefix(name, "RUSTC") {
			b.PassEnv(name)
		}
	}
	return b
}

func (b *BubblewrapSandbox) Arg(raw string) Sandbox {
	b.args = append(b.args, raw)
	return b
}

// Args returns a snapshot of the accumulated bwrap argument vector, used
// directly by spec.md's testable property 8 and the sandbox-check CLI
// subcommand.
func (b *BubblewrapSandbox) Args() []string {
	out := make([]string, len(b.args))
	copy(out, b.args)
	return out
}

// Run spawns bwrap with the accumulated arguments followed by the target
// binary and its args. Run takes a snapshot of the builder state and
// does not mutate it (spec.md section 5).
func (b *BubblewrapSandbox) Run(binary string, args ...string) (ProcessOutput, error) {
	full := append(append([]string{}, b.args...), binary)
	full = append(full, args...)
	cmd := exec.Command("bwrap", full...)
	cmd.Env = append([]string{}, b.env...)
	return runCmd(cmd)
}

func runCmd(cmd *exec.Cmd) (ProcessOutput, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return ProcessOutput{}, fmt.Errorf("sandbox: spawning %s: %w", cmd.Path, err)
		}
	}
	return ProcessOutput{ExitCode: exitCode, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// FromConfig materializes a Sandbox from cfg, applying the default
// policy from spec.md section 4.10 when cfg.Kind is Bubblewrap.
// Disabled and Inherit short-circuit to a backend-less passthrough
// without constructing a Bubblewrap builder, per spec.md section 9.
func FromConfig(cfg Config) (Sandbox, error) {
	switch cfg.Kind {
	case Disabled:
		return &passthroughSandbox{}, nil
	case Inherit:
		return &passthroughSandbox{inheritEnv: true}, nil
	case Bubblewrap:
		return fromBubblewrapConfig(cfg)
	default:
		return nil, fmt.Errorf("sandbox: unknown kind %q", cfg.Kind)
	}
}

func fromBubblewrapConfig(cfg Config) (Sandbox, error) {
	home, ok := os.LookupEnv("HOME")
	if !ok || home == "" {
		return nil, fmt.Errorf("sandbox: HOME is required to construct a bubblewrap sandbox")
	}

	b := NewBubblewrap()

	for _, path := range cfg.AllowRead {
		b.ROBind(path)
	}
	for _, path := range []string{
		"/usr", "/lib", "/lib64", "/bin", "/etc/alternatives",
		home + "/.cargo/bin", home + "/.cargo/git", home + "/.cargo/registry",
		home + "/.rustup",
	} {
		b.ROBind(path)
	}

	for _, path := range []string{"/var", "/tmp", "/run", "/usr/share"} {
		b.Tmpfs(path)
	}

	b.SetEnv("USER", "user")
	b.PassEnv("PATH")
	b.PassEnv("HOME")
	b.PassCargoEnv()

	for _, arg := range cfg.ExtraArgs {
		b.Arg(arg)
	}

	return b, nil
}
