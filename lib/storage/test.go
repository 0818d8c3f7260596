package storage

import "os"

//
// NewTestStorage returns a memory-backed `LevelDBBackend` for unit tests.
//
func NewTestStorage() *LevelDBBackend {
	st := &LevelDBBackend{}
	config, _ := NewConfigFromString("memory://")
	if err := st.Init(config); err != nil {
		panic(err)
	}

	return st
}

func CleanDB(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	os.RemoveAll(path)
}
