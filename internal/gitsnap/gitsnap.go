// Package gitsnap wraps the operator safety net: a git-stash based
// snapshot of the working tree taken before a mutating run. The engine
// never reads snapshot state; it only hands the operator a way back.
package gitsnap

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Handle identifies a restorable snapshot (a stash commit id).
type Handle string

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errOut.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Clean reports whether the working tree has no uncommitted changes.
func Clean(ctx context.Context, dir string) (bool, error) {
	out, err := git(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// Snapshot creates a stash commit of the current tree without touching
// the index or working copy, and stores it under the given label so it
// survives garbage collection.
func Snapshot(ctx context.Context, dir, label string) (Handle, error) {
	sha, err := git(ctx, dir, "stash", "create", label)
	if err != nil {
		return "", err
	}
	if sha == "" {
		// чистое дерево — снапшот не нужен
		return "", nil
	}
	if _, err := git(ctx, dir, "stash", "store", "-m", label, sha); err != nil {
		return "", err
	}
	return Handle(sha), nil
}

// Restore re-applies a snapshot over the current tree.
func Restore(ctx context.Context, dir string, h Handle) error {
	if h == "" {
		return fmt.Errorf("gitsnap: empty handle")
	}
	_, err := git(ctx, dir, "stash", "apply", string(h))
	return err
}
