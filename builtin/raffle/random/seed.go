// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package random

import (
	"encoding/binary"
	"io"

	"github.com/luckydraw/lucky/lucky"
)

// Seeder turns the draw counter and a subject account into a 32 bytes seed.
type Seeder interface {
	Seed(salt uint64, subject lucky.Address) (lucky.Bytes32, error)
}

// Block is the environment entropy available to a call.
type Block struct {
	Number uint32
	Time   uint64
}

// Alpha mixes the block, the salt and the subject into one message.
func (b Block) Alpha(salt uint64, subject lucky.Address) lucky.Bytes32 {
	return lucky.Blake2bFn(func(w io.Writer) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], b.Time)
		w.Write(buf[:])
		binary.BigEndian.PutUint32(buf[:4], b.Number)
		w.Write(buf[:4])
		binary.BigEndian.PutUint64(buf[:], salt)
		w.Write(buf[:])
		w.Write(subject.Bytes())
	})
}

// BlockSeeder derives seeds from block data only. Whoever controls or
// foresees the block can predict and bias the draws.
type BlockSeeder struct {
	Block Block
}

func (s BlockSeeder) Seed(salt uint64, subject lucky.Address) (lucky.Bytes32, error) {
	return s.Block.Alpha(salt, subject), nil
}
