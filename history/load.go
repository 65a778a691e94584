package history

import (
	"os"

	"github.com/qmuntal/stateless"
)

// Loader states, one per phase of the load chain. Any phase failure lands in
// stateFailed; only a container that survived every phase reaches stateReady.
type loadState stateless.State

var (
	stateEmpty        loadState = "Empty"
	stateRead         loadState = "ReadBytes"
	stateDecompressed loadState = "DecompressPayload"
	stateDeserialized loadState = "DeserializePayload"
	stateReady        loadState = "Ready"
	stateFailed       loadState = "Failed"
)

type loadTrigger stateless.Trigger

var (
	triggerRead        loadTrigger = "Read"
	triggerDecompress  loadTrigger = "Decompress"
	triggerDeserialize loadTrigger = "Deserialize"
	triggerVerify      loadTrigger = "Verify"
	triggerFail        loadTrigger = "Fail"
)

// loader carries the intermediate products of one load through the phase
// machine.
type loader struct {
	fsm     *stateless.StateMachine
	path    string
	version uint32
	block   []byte
	raw     []byte
	c       *Container
}

func newLoader(path string) *loader {
	ld := &loader{path: path}
	fsm := stateless.NewStateMachine(stateEmpty)
	fsm.Configure(stateEmpty).
		Permit(triggerRead, stateRead).
		Permit(triggerFail, stateFailed)
	fsm.Configure(stateRead).
		Permit(triggerDecompress, stateDecompressed).
		Permit(triggerFail, stateFailed)
	fsm.Configure(stateDecompressed).
		Permit(triggerDeserialize, stateDeserialized).
		Permit(triggerFail, stateFailed)
	fsm.Configure(stateDeserialized).
		Permit(triggerVerify, stateReady).
		Permit(triggerFail, stateFailed)
	ld.fsm = fsm
	return ld
}

// load drives a container load through the phase machine. It never panics on
// bad input; every failure is a typed LoadError.
func load(path string) (*Container, *LoadError) {
	ld := newLoader(path)
	steps := []struct {
		trigger loadTrigger
		run     func() *LoadError
	}{
		{triggerRead, ld.read},
		{triggerDecompress, ld.decompress},
		{triggerDeserialize, ld.deserialize},
		{triggerVerify, ld.verify},
	}
	for _, step := range steps {
		if lerr := step.run(); lerr != nil {
			_ = ld.fsm.Fire(triggerFail)
			return nil, lerr
		}
		if err := ld.fsm.Fire(step.trigger); err != nil {
			panic("history: load phase out of order: " + err.Error())
		}
	}
	return ld.c, nil
}

func (ld *loader) read() *LoadError {
	data, err := os.ReadFile(ld.path)
	if err != nil {
		return &LoadError{Kind: LoadIO, Path: ld.path, Err: err}
	}
	version, block, err := splitHeader(data)
	if err != nil {
		return &LoadError{Kind: LoadCorrupt, Path: ld.path, Err: err}
	}
	ld.version, ld.block = version, block
	return nil
}

func (ld *loader) decompress() *LoadError {
	raw, err := decompress(ld.block)
	if err != nil {
		return &LoadError{Kind: LoadCorrupt, Path: ld.path, Version: ld.version, Err: err}
	}
	ld.raw = raw
	return nil
}

func (ld *loader) deserialize() *LoadError {
	c, err := deserialize(ld.version, ld.raw)
	switch err {
	case nil:
		ld.c = c
		return nil
	case errUnknownVersion:
		// Leave the container nil so the version check reports it.
		return nil
	default:
		return &LoadError{Kind: LoadCorrupt, Path: ld.path, Version: ld.version, Err: err}
	}
}

func (ld *loader) verify() *LoadError {
	if ld.c == nil {
		return &LoadError{Kind: LoadIncompatibleVersion, Path: ld.path, Version: ld.version}
	}
	return nil
}
