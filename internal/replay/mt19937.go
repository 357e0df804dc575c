package replay

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// MT19937 is the 32-bit Mersenne Twister used to derive engine seeds.
type MT19937 struct {
	state [mtN]uint32
	index int
}

// NewMT19937 seeds a generator the way init_genrand does.
func NewMT19937(seed uint32) *MT19937 {
	mt := &MT19937{}
	mt.state[0] = seed
	for i := 1; i < mtN; i++ {
		prev := mt.state[i-1]
		mt.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	mt.index = mtN
	return mt
}

func (mt *MT19937) twist() {
	for i := 0; i < mtN; i++ {
		y := mt.state[i]&mtUpperMask | mt.state[(i+1)%mtN]&mtLowerMask
		next := mt.state[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			next ^= mtMatrixA
		}
		mt.state[i] = next
	}
	mt.index = 0
}

// Uint32 returns the next tempered output.
func (mt *MT19937) Uint32() uint32 {
	if mt.index >= mtN {
		mt.twist()
	}
	y := mt.state[mt.index]
	mt.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}
