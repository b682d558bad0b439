package agr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Block is one data block read back from a project file.
type Block struct {
	Graph int
	Set   int
	Kind  string
	Rows  [][]float64
}

// ReadDataFile returns every data block in the project file at path.
func ReadDataFile(path string) ([]Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return ReadData(f)
}

// ReadData returns every data block in file order, whatever its graph. A
// block without an @type line has an empty Kind.
func ReadData(r io.Reader) ([]Block, error) {
	var (
		blocks []Block
		cur    *Block
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSuffix(sc.Text(), "\r")
		l := Classify(text)
		if cur == nil {
			if l.Class == ClassTarget {
				blocks = append(blocks, Block{Graph: l.Graph, Set: l.Set})
				cur = &blocks[len(blocks)-1]
			}
			continue
		}
		switch l.Class {
		case ClassEnd:
			cur = nil
		case ClassType:
			cur.Kind = l.Kind
		default:
			fields := strings.Fields(text)
			if len(fields) == 0 || strings.HasPrefix(fields[0], "@") || strings.HasPrefix(fields[0], "#") {
				continue
			}
			row := make([]float64, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("agr: line %d: G%d.S%d: %w", n, cur.Graph, cur.Set, err)
				}
				row[i] = v
			}
			cur.Rows = append(cur.Rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// IsProjectFile reports whether the file at path starts with the XMGrace
// project header.
func IsProjectFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	first, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, &IOError{Op: "read", Path: path, Err: err}
	}
	return strings.TrimRight(first, "\r\n") == Header, nil
}
