package keycheck

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"
)

// ScanCommit opens the repository at repoPath and scans the lines rev adds
// relative to its first parent. A root commit is compared with the empty tree.
func (s *Scanner) ScanCommit(repoPath, rev string) ([]Finding, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open repository: %w", err)
	}
	commit, err := resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}
	return s.scanCommit(commit)
}

// ScanRange scans every commit reachable from to but not from from, newest
// first. An empty from scans the whole history of to.
func (s *Scanner) ScanRange(repoPath, from, to string) ([]Finding, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open repository: %w", err)
	}
	head, err := resolveCommit(repo, to)
	if err != nil {
		return nil, err
	}

	stop := plumbing.ZeroHash
	if from != "" {
		base, err := resolveCommit(repo, from)
		if err != nil {
			return nil, err
		}
		stop = base.Hash
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash})
	if err != nil {
		return nil, fmt.Errorf("unable to read history: %w", err)
	}
	defer iter.Close()

	var findings []Finding
	scanned := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == stop {
			return storer.ErrStop
		}
		found, err := s.scanCommit(c)
		if err != nil {
			return err
		}
		findings = append(findings, found...)
		scanned++
		if s.onCommit != nil {
			s.onCommit(c.Hash.String(), scanned)
		}
		return nil
	})
	if err != nil {
		return findings, err
	}
	return findings, nil
}

func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("unable to resolve %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("unable to get commit object: %w", err)
	}
	return commit, nil
}

func (s *Scanner) scanCommit(commit *object.Commit) ([]Finding, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("unable to get commit tree: %w", err)
	}

	var parentTree *object.Tree
	parent, err := commit.Parents().Next()
	switch {
	case err == nil:
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("unable to get parent tree: %w", err)
		}
	case errors.Is(err, io.EOF):
		// root commit
	default:
		return nil, fmt.Errorf("unable to get parent commit: %w", err)
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("unable to diff commit: %w", err)
	}
	patch, err := changes.Patch()
	if err != nil {
		return nil, fmt.Errorf("unable to build patch: %w", err)
	}

	var findings []Finding
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		if to == nil || fp.IsBinary() {
			continue
		}
		path := to.Path()
		if s.Ignored(path) {
			s.logger.Debug("ignored file", zap.String("file", path))
			continue
		}

		line := 0
		for _, chunk := range fp.Chunks() {
			lines := splitChunk(chunk.Content())
			switch chunk.Type() {
			case fdiff.Equal:
				line += len(lines)
			case fdiff.Add:
				for _, text := range lines {
					line++
					for _, f := range s.scanHunkLine(path, line, text) {
						f.Commit = commit.Hash.String()
						findings = append(findings, f)
					}
				}
			}
		}
	}
	return findings, nil
}

func splitChunk(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
