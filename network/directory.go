// Package network connects the nodes of a simulation through a star of links
// with time-varying delays.
package network

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arap/ant"
)

// ErrUnknownAddress is returned for an address that no node owns.
var ErrUnknownAddress = errors.New("unknown address")

// BaseAddress precedes the address of the first node.
var BaseAddress = ant.AddressFrom4(10, 1, 1, 0)

// Directory lists the nodes of the network. Node i owns BaseAddress+i+1.
type Directory struct {
	addrs []ant.Address
	index map[ant.Address]int
}

// NewDirectory creates a directory of n nodes.
func NewDirectory(n int) *Directory {
	d := &Directory{
		addrs: make([]ant.Address, n),
		index: make(map[ant.Address]int, n),
	}

	for i := range d.addrs {
		a := BaseAddress + ant.Address(i+1)
		d.addrs[i] = a
		d.index[a] = i
	}

	return d
}

// Len returns the number of nodes.
func (d *Directory) Len() int {
	return len(d.addrs)
}

// Addresses returns the address of every node, ordered by node index.
func (d *Directory) Addresses() []ant.Address {
	return append([]ant.Address(nil), d.addrs...)
}

// Address returns the address of node i.
func (d *Directory) Address(i int) (ant.Address, error) {
	if i < 0 || i >= len(d.addrs) {
		return 0, fmt.Errorf("%w: node index %d out of [0, %d)",
			ErrUnknownAddress, i, len(d.addrs))
	}

	return d.addrs[i], nil
}

// IndexOf returns the index of the node owning a.
func (d *Directory) IndexOf(a ant.Address) (int, bool) {
	i, ok := d.index[a]
	return i, ok
}
