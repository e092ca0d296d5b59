package mask

const (
	mtN       = 624
	mtM       = 397
	matrixA   = 0x9908b0df
	upperMask = 0x80000000
	lowerMask = 0x7fffffff
)

// MT19937 is the 32-bit Mersenne Twister. Seeding follows init_genrand and
// Float64 builds 53-bit doubles from two outputs, the same construction the
// widely used scientific stacks use, so a stream seeded with k yields the
// same uniforms they do.
type MT19937 struct {
	state [mtN]uint32
	idx   int
}

// NewMT19937 returns a generator seeded with seed.
func NewMT19937(seed uint32) *MT19937 {
	mt := &MT19937{}
	mt.Seed(seed)
	return mt
}

// Seed resets the state from seed.
func (mt *MT19937) Seed(seed uint32) {
	mt.state[0] = seed
	for i := 1; i < mtN; i++ {
		prev := mt.state[i-1]
		mt.state[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	mt.idx = mtN
}

func (mt *MT19937) twist() {
	for i := 0; i < mtN; i++ {
		y := mt.state[i]&upperMask | mt.state[(i+1)%mtN]&lowerMask
		next := mt.state[(i+mtM)%mtN] ^ y>>1
		if y&1 != 0 {
			next ^= matrixA
		}
		mt.state[i] = next
	}
	mt.idx = 0
}

// Uint32 returns the next tempered 32-bit output.
func (mt *MT19937) Uint32() uint32 {
	if mt.idx >= mtN {
		mt.twist()
	}
	y := mt.state[mt.idx]
	mt.idx++

	y ^= y >> 11
	y ^= y << 7 & 0x9d2c5680
	y ^= y << 15 & 0xefc60000
	y ^= y >> 18
	return y
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (mt *MT19937) Float64() float64 {
	a := mt.Uint32() >> 5
	b := mt.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}
