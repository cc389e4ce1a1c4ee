package exporter

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAll 先把所有文件写成同目录临时文件，全部成功后再重命名；失败时清理已写内容。
func WriteAll(dir string, rendered *Rendered) (Paths, error) {
	if rendered == nil {
		return Paths{}, fmt.Errorf("nothing to write")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	artifacts := []Artifact{rendered.Audit, rendered.Valid}
	temps := make([]string, 0, len(artifacts))
	cleanup := func(paths []string) {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}

	for _, a := range artifacts {
		tmp, err := writeTemp(dir, a)
		if err != nil {
			cleanup(temps)
			return Paths{}, err
		}
		temps = append(temps, tmp)
	}

	finals := make([]string, len(artifacts))
	for i, a := range artifacts {
		finals[i] = filepath.Join(dir, a.Name)
		if err := os.Rename(temps[i], finals[i]); err != nil {
			cleanup(temps[i:])
			cleanup(finals[:i])
			return Paths{}, fmt.Errorf("failed to move %s into place: %w", a.Name, err)
		}
	}

	return Paths{Audit: finals[0], Valid: finals[1]}, nil
}

func writeTemp(dir string, a Artifact) (string, error) {
	f, err := os.CreateTemp(dir, "."+a.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", a.Name, err)
	}
	name := f.Name()

	if _, err := f.Write(a.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", a.Name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to close %s: %w", a.Name, err)
	}
	return name, nil
}
