package filesink

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iotmesh/datasink/cmn/nlog"
)

// recover implements spec §4.C "Initialization / crash recovery": promote
// any tagged tmp/ leftovers from a previous run, then (if a deposit channel
// is configured) re-announce every matching file already in the target
// directory. Both passes are best-effort: a single bad entry is logged and
// skipped, never fatal (spec §7 "Io(kind)... during promotion they are
// logged and skipped").
func (s *Sink) recover() {
	entries, err := os.ReadDir(s.cfg.TmpDir)
	if err != nil {
		nlog.Errorf("filesink[%s]: recovery: reading %s: %v", s.cfg.Tag, s.cfg.TmpDir, err)
		return
	}
	prefix := s.cfg.Tag + "."
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(s.cfg.TmpDir, e.Name())
		// Rename only: the target-directory pass below announces every
		// matching file, recovered ones included, exactly once.
		targetPath := filepath.Join(s.cfg.TargetDir, e.Name())
		if err := os.Rename(path, targetPath); err != nil && !os.IsNotExist(err) {
			nlog.Errorf("filesink[%s]: recovery: promoting %s: %v", s.cfg.Tag, path, err)
		}
	}

	if s.cfg.Deposit == nil {
		return
	}
	targets, err := os.ReadDir(s.cfg.TargetDir)
	if err != nil {
		nlog.Errorf("filesink[%s]: recovery: reading %s: %v", s.cfg.Tag, s.cfg.TargetDir, err)
		return
	}
	for _, e := range targets {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(s.cfg.TargetDir, e.Name())
		s.notifyDeposit(path)
	}
}
