package workflow

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// FileVersion is the current persisted workflow file version.
const FileVersion = 1

// File is the save/load boundary with the persistence collaborator.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	EdgeStyle   string    `json:"edgeStyle,omitempty"`
	Groups      []Group   `json:"groups,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Marshal encodes the file as indented JSON.
func Marshal(f File) ([]byte, error) {
	raw, err := sonic.ConfigStd.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow file: %w", err)
	}
	return raw, nil
}

// Unmarshal decodes and version-checks a workflow file. Files written by a
// newer genflow are rejected rather than half-read.
func Unmarshal(raw []byte) (File, error) {
	var f File
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("failed to decode workflow file: %w", err)
	}
	if f.Version > FileVersion {
		return File{}, fmt.Errorf("unsupported workflow file version %d (latest supported is %d)", f.Version, FileVersion)
	}
	return f, nil
}
