package main

import "testing"

func TestServeHelpDescribesQueueLimits(t *testing.T) {
	out, _, err := runCLI(t, []string{"serve", "--help"}, "")
	if err != nil {
		t.Fatalf("serve --help: %v", err)
	}
	requireContains(t, out, "intake.buffer")
	requireContains(t, out, "SIGINT")
}
