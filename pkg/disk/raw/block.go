/*
   OqtaDisk - Apple II Disk II emulator
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaDisk.

   OqtaDisk is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaDisk is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaDisk. If not, see <http://www.gnu.org/licenses/>.
*/

package raw

// layout of an address field, including prologue and epilogue
var AddressFieldIndex = map[string][2]int{
	"prologue": {0, 3},
	"volume":   {3, 2},
	"track":    {5, 2},
	"sector":   {7, 2},
	"checksum": {9, 2},
	"epilogue": {11, 3},
}

//
const AddressFieldLength = 14

// data field length: prologue, 342 values, checksum, epilogue
const DataFieldLength = MarkerLength + NibbleValues + 1 + MarkerLength

//
func NewBlock(index map[string][2]int, data []byte) *Block {
	return &Block{index: index, Data: data}
}

//
type Block struct {
	index map[string][2]int
	Data  []byte
}

//
func (b *Block) GetByte(key string) byte {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.Data) && ix[1] == 1 {
			return b.Data[ix[0]]
		}
	}
	return 0
}

//
func (b *Block) GetSlice(key string) []byte {
	if ix, ok := b.index[key]; ok {
		start := ix[0]
		end := start + ix[1]
		if 0 <= start && end <= len(b.Data) {
			return b.Data[start:end]
		}
	}
	return []byte{}
}

// Get44 decodes the 4-and-4 encoded value stored under key.
func (b *Block) Get44(key string) byte {
	bytes := b.GetSlice(key)
	if len(bytes) != 2 {
		return 0
	}
	return Decode44(bytes[0], bytes[1])
}

// Set44 4-and-4 encodes v into the slot of key.
func (b *Block) Set44(key string, v byte) {
	if bytes := b.GetSlice(key); len(bytes) == 2 {
		Write44(bytes, v)
	}
}

// NewAddressField builds a complete address field for the given values. The
// checksum is calculated from the other three.
func NewAddressField(volume, track, sector byte) *Block {
	b := NewBlock(AddressFieldIndex, make([]byte, AddressFieldLength))
	copy(b.GetSlice("prologue"), AddressPrologue)
	b.Set44("volume", volume)
	b.Set44("track", track)
	b.Set44("sector", sector)
	b.Set44("checksum", volume^track^sector)
	copy(b.GetSlice("epilogue"), Epilogue)
	return b
}

// IsValidAddress reports whether the checksum of the address field in b
// matches its volume, track, and sector.
func (b *Block) IsValidAddress() bool {
	return b.Get44("checksum") ==
		b.Get44("volume")^b.Get44("track")^b.Get44("sector")
}
