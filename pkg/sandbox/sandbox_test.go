package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S5 from spec.md section 8.
func TestFromConfig_Bubblewrap_DefaultPolicy(t *testing.T) {
	t.Setenv("HOME", "/h")
	t.Setenv("PATH", "/usr/bin")

	cfg := Config{
		Kind:      Bubblewrap,
		AllowRead: []string{"/data"},
		ExtraArgs: []string{"--die-with-parent"},
	}
	built, err := FromConfig(cfg)
	require.NoError(t, err)

	bw, ok := built.(*BubblewrapSandbox)
	require.True(t, ok)
	args := bw.Args()

	for _, path := range []string{
		"/data", "/usr", "/lib", "/lib64", "/bin", "/etc/alternatives",
		"/h/.cargo/bin", "/h/.cargo/git", "/h/.cargo/registry", "/h/.rustup",
	} {
		assert.Contains(t, args, path, "expected %s to be ro-bound", path)
	}

	for _, path := range []string{"/var", "/tmp", "/run", "/usr/share"} {
		assert.Contains(t, args, path, "expected %s to be tmpfs-mounted", path)
	}

	assert.Contains(t, args, "USER")
	assert.Contains(t, args, "user")
	assert.Contains(t, args, "--die-with-parent")

	assert.NotContains(t, args, "/h/.cargo", "must not bind $HOME/.cargo wholesale")
}

func TestFromConfig_Bubblewrap_MissingHomeIsFatal(t *testing.T) {
	t.Setenv("HOME", "")
	_, err := FromConfig(Config{Kind: Bubblewrap})
	assert.Error(t, err)
}

func TestFromConfig_Disabled_NoArgsAccumulated(t *testing.T) {
	built, err := FromConfig(Config{Kind: Disabled})
	require.NoError(t, err)
	_, isBubblewrap := built.(*BubblewrapSandbox)
	assert.False(t, isBubblewrap, "Disabled must not construct a Bubblewrap backend")
}

func TestFromConfig_Inherit_NoArgsAccumulated(t *testing.T) {
	built, err := FromConfig(Config{Kind: Inherit})
	require.NoError(t, err)
	_, isBubblewrap := built.(*BubblewrapSandbox)
	assert.False(t, isBubblewrap, "Inherit must not construct a Bubblewrap backend")
}

func TestFromConfig_UnknownKind(t *testing.T) {
	_, err := FromConfig(Config{Kind: "bogus"})
	assert.Error(t, err)
}

func TestBubblewrap_PassCargoEnv_ExcludesRustcWrapper(t *testing.T) {
	t.Setenv("HOME", "/h")
	t.Setenv("CARGO_HOME", "/h/.cargo")
	t.Setenv("RUSTC_WRAPPER", "/some/analyzer")

	b := NewBubblewrap()
	b.PassCargoEnv()
	args := b.Args()

	assert.Contains(t, args, "CARGO_HOME")
	assert.NotContains(t, args, "RUSTC_WRAPPER", "RUSTC_WRAPPER would recursively re-enter the analyzer")
}

func TestBubblewrap_Run_DoesNotMutateBuilder(t *testing.T) {
	b := NewBubblewrap()
	b.ROBind("/data")
	before := len(b.Args())

	_, _ = b.Run("/bin/true")

	assert.Equal(t, before, len(b.Args()), "Run must take a snapshot and not mutate the builder")
}
