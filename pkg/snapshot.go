package dirtreecheck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// SnapshotSignature is the first field of a snapshot file's header line
const SnapshotSignature = "dtsnap1"

// maxWriteIovecs chunks writev batches below the POSIX IOV_MAX floor
const maxWriteIovecs = 1024

// ErrBadSnapshot is returned when a snapshot file cannot be parsed or fails
// validation after rebuilding
var ErrBadSnapshot = errors.New("malformed snapshot file")

// WriteSnapshot writes the tree's pathnames to outputPath as a text snapshot:
// a header line carrying the signature and node count, then one pathname per
// line in sorted order. All lines are written with a single batched writev
// per chunk.
func (dt *DirTree) WriteSnapshot(outputPath string) error {
	defer VerboseEnter()()

	// Assemble one line buffer per node; the buffers must stay live until
	// the writev completes
	lines := make([][]byte, 0, dt.index.Length()+1)
	header := fmt.Sprintf("%s %d\n", SnapshotSignature, dt.count)
	lines = append(lines, []byte(header))

	dt.index.ForEach(func(node *Node) bool {
		if node.Path() == nil {
			return true
		}
		line := make([]byte, 0, len(node.Path().Pathname())+1)
		line = append(line, node.Path().Pathname()...)
		line = append(line, '\n')
		lines = append(lines, line)
		return true
	})

	iovecs := make([]syscall.Iovec, len(lines))
	totalSize := 0
	for i, line := range lines {
		iovecs[i] = syscall.Iovec{
			Base: &line[0],
			Len:  uint64(len(line)),
		}
		totalSize += len(line)
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file %s: %w", outputPath, err)
	}
	defer file.Close()

	totalWritten := 0
	for offset := 0; offset < len(iovecs); offset += maxWriteIovecs {
		end := offset + maxWriteIovecs
		if end > len(iovecs) {
			end = len(iovecs)
		}

		// Use slice without copying to avoid allocation
		chunk := iovecs[offset:end]

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
		if err != nil {
			return fmt.Errorf("failed to write snapshot chunk with vectorio: %w", err)
		}
		totalWritten += nw
	}

	if totalWritten != totalSize {
		return fmt.Errorf("snapshot write incomplete: wrote %d bytes, expected %d", totalWritten, totalSize)
	}

	return nil
}

// LoadSnapshot reads a snapshot file via a read-only mmap, rebuilds the tree,
// and validates it against the header's node count before returning it.
func LoadSnapshot(snapshotPath string) (*DirTree, error) {
	defer VerboseEnter()()

	file, err := os.Open(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file %s: %w", snapshotPath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot file: %w", err)
	}
	if stat.Size() == 0 {
		return nil, ErrBadSnapshot
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap snapshot file: %w", err)
	}
	defer unix.Munmap(data)

	// Lines hold string data only while the mapping is live; Insert copies
	// what it keeps, so nothing below retains mmap memory
	lines := bytes.Split(data, []byte{'\n'})
	if len(lines) == 0 {
		return nil, ErrBadSnapshot
	}

	headerFields := bytes.Fields(lines[0])
	if len(headerFields) != 2 || string(headerFields[0]) != SnapshotSignature {
		return nil, ErrBadSnapshot
	}
	expectedCount, err := strconv.Atoi(string(headerFields[1]))
	if err != nil || expectedCount < 0 {
		return nil, ErrBadSnapshot
	}

	dt := NewDirTree()
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		pathname := string(line)
		if err := dt.Insert(pathname); err != nil {
			return nil, fmt.Errorf("%w: bad entry %q: %v", ErrBadSnapshot, pathname, err)
		}
	}

	if dt.Count() != expectedCount {
		return nil, fmt.Errorf("%w: header claims %d nodes, rebuilt %d",
			ErrBadSnapshot, expectedCount, dt.Count())
	}

	if !dt.Validate() {
		return nil, fmt.Errorf("%w: rebuilt tree failed validation", ErrBadSnapshot)
	}

	return dt, nil
}
