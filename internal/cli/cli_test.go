package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/analysis"
	"atsmatch/internal/config"
	"atsmatch/internal/types"
)

func TestApplyServeFlagsOnlyOverridesChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().AddFlagSet(serveCmd.Flags())
	require.NoError(t, cmd.Flags().Set("port", "9090"))
	require.NoError(t, cmd.Flags().Set("tls-mode", "server"))

	cfg := config.ServerConfig{Host: "0.0.0.0", Port: "8080", TLS: config.TLSConfig{Mode: "disabled", CertFile: "keep.pem"}}
	applyServeFlags(cmd, &cfg)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "server", cfg.TLS.Mode)
	assert.Equal(t, "keep.pem", cfg.TLS.CertFile)
}

func TestResumeAndJD(t *testing.T) {
	resume, jd, err := resumeAndJD([]string{"r"})
	require.NoError(t, err)
	assert.Equal(t, "r", resume)
	assert.Empty(t, jd)

	resume, jd, err = resumeAndJD([]string{"r", "j"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "j"}, []string{resume, jd})

	_, _, err = resumeAndJD(nil)
	assert.Error(t, err)
}

func TestWatchView(t *testing.T) {
	pair := documentPair{Resume: analysis.DemoResumeText, JobDescription: analysis.DemoJobDescription}

	score, ok := watchView("score", pair).(types.AtsScoreResult)
	require.True(t, ok)
	assert.Equal(t, 24, score.Score)

	_, ok = watchView("analyze", pair).(types.AnalysisReport)
	assert.True(t, ok)

	dash, ok := watchView("dashboard", pair).(types.DashboardMetrics)
	require.True(t, ok)
	assert.Equal(t, 53, dash.AtsScore)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "atsmatch version dev")
}
