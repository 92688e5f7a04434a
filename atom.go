package willitserver

import "sync"

// Atom is a symbolic value compared by identity. Atoms obtained from AtomFor
// are interned in a process-wide registry; atoms from NewAtom are local.
type Atom struct {
	desc string
}

func (a *Atom) String() string {
	return "Atom(" + a.desc + ")"
}

type atomRegistry struct {
	mu    sync.RWMutex
	atoms map[string]*Atom
	keys  map[*Atom]string
}

var globalAtoms = &atomRegistry{
	atoms: make(map[string]*Atom),
	keys:  make(map[*Atom]string),
}

// AtomFor returns the atom registered under key, creating it on first use.
// Two calls with the same key return the same atom.
func AtomFor(key string) *Atom {
	globalAtoms.mu.RLock()
	a, ok := globalAtoms.atoms[key]
	globalAtoms.mu.RUnlock()
	if ok {
		return a
	}

	globalAtoms.mu.Lock()
	defer globalAtoms.mu.Unlock()
	// double check
	if a, ok = globalAtoms.atoms[key]; ok {
		return a
	}
	a = &Atom{desc: key}
	globalAtoms.atoms[key] = a
	globalAtoms.keys[a] = key
	return a
}

// NewAtom creates an atom that is never registered, even when another atom
// with the same description is.
func NewAtom(desc string) *Atom {
	return &Atom{desc: desc}
}

// AtomKey reports the registry key of a, if a was produced by AtomFor.
func AtomKey(a *Atom) (string, bool) {
	if a == nil {
		return "", false
	}
	globalAtoms.mu.RLock()
	defer globalAtoms.mu.RUnlock()
	key, ok := globalAtoms.keys[a]
	return key, ok
}
