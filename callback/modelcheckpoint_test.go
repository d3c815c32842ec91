package callback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oysteijo/gosimdnn/network"
)

func newSaveableNetwork(t *testing.T) *network.Network {
	t.Helper()
	n, err := network.Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestModelCheckpointSavesOnImprovement(t *testing.T) {
	net := newSaveableNetwork(t)
	path := filepath.Join(t.TempDir(), "best.npz")
	m := &ModelCheckpoint{Net: net, Filename: path, MonitorIdx: -1, GreaterIsBetter: false}

	if err := m.Run([]string{"mean_squared_error"}, []float32{1.0}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected checkpoint file to be written on first improvement: %v", err)
	}
}

func TestModelCheckpointSkipsSaveWithoutImprovement(t *testing.T) {
	net := newSaveableNetwork(t)
	path := filepath.Join(t.TempDir(), "best.npz")
	m := &ModelCheckpoint{Net: net, Filename: path, MonitorIdx: -1, GreaterIsBetter: false}

	if err := m.Run(nil, []float32{1.0}, false); err != nil {
		t.Fatal(err)
	}
	info1, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Run(nil, []float32{2.0}, false); err != nil { // worse score, GreaterIsBetter=false
		t.Fatal(err)
	}
	info2, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info1.ModTime() != info2.ModTime() {
		t.Error("expected no re-save when the monitored metric did not improve")
	}
}
