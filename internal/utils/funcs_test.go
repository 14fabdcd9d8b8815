package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blagojts/viper"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestIsIn(t *testing.T) {
	arr := []string{"mean", "var"}
	cases := []struct {
		s    string
		want bool
	}{
		{s: "mean", want: true},
		{s: "var", want: true},
		{s: "cov", want: false},
		{s: "", want: false},
	}
	for _, c := range cases {
		if got := IsIn(c.s, arr); got != c.want {
			t.Errorf("IsIn(%q) = %v, want %v", c.s, got, c.want)
		}
	}
	if IsIn("x", nil) {
		t.Errorf("IsIn on nil slice returned true")
	}
}

func TestValidateChoice(t *testing.T) {
	valid := []string{"binary", "text"}
	cases := []struct {
		desc   string
		s      string
		errMsg string
	}{
		{desc: "valid", s: "text"},
		{
			desc:   "invalid",
			s:      "xml",
			errMsg: fmt.Sprintf(errUnknownChoiceFmt, "format", "xml", "binary, text"),
		},
	}
	for _, c := range cases {
		err := ValidateChoice("format", c.s, valid)
		if c.errMsg == "" && err != nil {
			t.Errorf("%s: unexpected error: %v", c.desc, err)
		} else if c.errMsg != "" && err == nil {
			t.Errorf("%s: unexpected lack of error", c.desc)
		} else if err != nil && err.Error() != c.errMsg {
			t.Errorf("%s: incorrect error: got %s want %s", c.desc, err.Error(), c.errMsg)
		}
	}
}

func TestTemporaryFilename(t *testing.T) {
	t.Setenv("TMPDIR", "/var/scratch")
	a := TemporaryFilename("alea")
	require.True(t, strings.HasPrefix(a, "/var/scratch/alea-"), a)

	t.Setenv("TMPDIR", "")
	require.True(t, strings.HasPrefix(TemporaryFilename("alea"), "/tmp/alea-"))

	b := TemporaryFilename("./out/run")
	require.True(t, strings.HasPrefix(b, "./out/run-"), b)
	require.NotEqual(t, b, TemporaryFilename("./out/run"))
}

func TestSetupConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "alea.yaml")
	require.NoError(t, os.WriteFile(file, []byte("estimator: cov\nbatches: 16\n"), 0644))

	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.String("estimator", "mean", "")
	fs.Int("batches", 8, "")
	fs.String("format", "binary", "")
	require.NoError(t, fs.Parse([]string{"--batches=32"}))

	v := viper.New()
	used, err := SetupConfigFile(v, fs, file)
	require.NoError(t, err)
	require.Equal(t, file, used)
	require.Equal(t, "cov", v.GetString("estimator"))
	// flags set on the command line win over the file
	require.Equal(t, 32, v.GetInt("batches"))
	require.Equal(t, "binary", v.GetString("format"))
}

func TestSetupConfigFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	used, err := SetupConfigFile(viper.New(), nil, "")
	require.NoError(t, err)
	require.Empty(t, used)

	_, err = SetupConfigFile(viper.New(), nil, "does-not-exist.yaml")
	require.Error(t, err)
}
