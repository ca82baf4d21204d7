package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
)

// idsKey marks the postings entry inside a serialized node. NUL can never
// appear as an ingredient character, so the key cannot collide with a
// child edge.
const idsKey = "\x00ids"

// snapshot is the on-disk artifact: provenance header plus the root node.
type snapshot struct {
	Source  string `msgpack:"source"`
	BuiltAt int64  `msgpack:"built_at"`
	Tokens  int    `msgpack:"tokens"`
	Docs    int    `msgpack:"docs"`
	Root    *Node  `msgpack:"root"`
}

var (
	_ msgpack.CustomEncoder = (*Node)(nil)
	_ msgpack.CustomDecoder = (*Node)(nil)
)

// EncodeMsgpack writes the node as a single map: one entry per child edge
// keyed by its character, plus the reserved idsKey entry on terminals.
func (n *Node) EncodeMsgpack(enc *msgpack.Encoder) error {
	size := len(n.Children)
	if len(n.IDs) > 0 {
		size++
	}
	if err := enc.EncodeMapLen(size); err != nil {
		return err
	}
	if len(n.IDs) > 0 {
		if err := enc.EncodeString(idsKey); err != nil {
			return err
		}
		if err := enc.Encode(n.IDs); err != nil {
			return err
		}
	}
	for char, child := range n.Children {
		if err := enc.EncodeString(char); err != nil {
			return err
		}
		if err := child.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack is the inverse of EncodeMsgpack.
func (n *Node) DecodeMsgpack(dec *msgpack.Decoder) error {
	size, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		if key == idsKey {
			var ids []string
			if err := dec.Decode(&ids); err != nil {
				return err
			}
			n.IDs = ids
			continue
		}
		child := &Node{}
		if err := child.DecodeMsgpack(dec); err != nil {
			return err
		}
		if n.Children == nil {
			n.Children = make(map[string]*Node)
		}
		n.Children[key] = child
	}
	return nil
}

// Save persists the index atomically: the snapshot is written to a temp
// file in the artifact's directory and renamed over the final path, so a
// reader never observes a half-written artifact. A file lock beside the
// artifact keeps two processes from clobbering each other's temp file.
func Save(ix *Index, artifactPath string) error {
	dir := filepath.Dir(artifactPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	// The lock file is left in place after unlock: removing it would let a
	// late-arriving process create a fresh inode and hold a second,
	// independent lock while another writer still holds the old one.
	lock := flock.New(artifactPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock artifact %s: %w", artifactPath, err)
	}
	defer lock.Unlock()

	tmpPath := artifactPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp artifact %s: %w", tmpPath, err)
	}

	w := bufio.NewWriter(file)
	enc := msgpack.NewEncoder(w)
	err = enc.Encode(&snapshot{
		Source:  ix.Source,
		BuiltAt: ix.BuiltAt.Unix(),
		Tokens:  ix.Tokens,
		Docs:    ix.Docs,
		Root:    ix.Root,
	})
	if err == nil {
		err = w.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, artifactPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	log.Debugf("Persisted index snapshot to %s", artifactPath)
	return nil
}

// Load deserializes a snapshot back into an Index. Callers decide what a
// failure degrades to; Load itself just reports it.
func Load(artifactPath string) (*Index, error) {
	file, err := os.Open(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", artifactPath, err)
	}
	defer file.Close()

	var snap snapshot
	dec := msgpack.NewDecoder(bufio.NewReader(file))
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", artifactPath, err)
	}
	if snap.Root == nil {
		snap.Root = &Node{}
	}
	return &Index{
		Root:    snap.Root,
		Source:  snap.Source,
		BuiltAt: time.Unix(snap.BuiltAt, 0),
		Tokens:  snap.Tokens,
		Docs:    snap.Docs,
	}, nil
}
