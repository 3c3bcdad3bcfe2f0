package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestReplayScenario(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"../../scenario/testdata/enemy_free_kick.yaml"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "13/13 expectations passed") {
		t.Errorf("replay output = %q, want all 13 expectations passed", got)
	}
}
