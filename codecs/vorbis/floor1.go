// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"slices"

	"github.com/ik5/audmux/internal/bits"
)

const floor1MaxPoints = 65

var floor1Ranges = [4]int32{256, 128, 86, 64}

type floor1Class struct {
	dims     uint32
	subBits  uint32
	mainBook uint8
	// subBooks[i] is only valid when bit i of subUsed is set.
	subBooks [8]uint8
	subUsed  uint8
}

type floor1 struct {
	partitionClass []uint8
	classes        []floor1Class
	multiplier     int32
	xs             []uint32
	// neighbours[i] are the indices of the closest lower and higher x among
	// points 0..i-1.
	neighbours [][2]int
	sorted     []int

	y      []uint32
	finalY []int32
	step2  []bool
}

func readFloor1(bs *bits.ReaderRtl, numBooks int) (*floor1, error) {
	var f floor1

	partitions, err := bs.ReadBitsLeq32(5)
	if err != nil {
		return nil, err
	}

	f.partitionClass = make([]uint8, partitions)
	maxClass := -1
	for i := range f.partitionClass {
		c, err := bs.ReadBitsLeq32(4)
		if err != nil {
			return nil, err
		}
		f.partitionClass[i] = uint8(c)
		maxClass = max(maxClass, int(c))
	}

	f.classes = make([]floor1Class, maxClass+1)
	for i := range f.classes {
		c := &f.classes[i]

		dims, err := bs.ReadBitsLeq32(3)
		if err != nil {
			return nil, err
		}
		c.dims = dims + 1

		if c.subBits, err = bs.ReadBitsLeq32(2); err != nil {
			return nil, err
		}

		if c.subBits > 0 {
			b, err := bs.ReadBitsLeq32(8)
			if err != nil {
				return nil, err
			}
			if int(b) >= numBooks {
				return nil, wrapErr(ErrBadReference, "floor1 class book %d of %d", b, numBooks)
			}
			c.mainBook = uint8(b)
		}

		for j := range 1 << c.subBits {
			b, err := bs.ReadBitsLeq32(8)
			if err != nil {
				return nil, err
			}
			if b == 0 {
				continue
			}
			if int(b-1) >= numBooks {
				return nil, wrapErr(ErrBadReference, "floor1 subclass book %d of %d", b-1, numBooks)
			}
			c.subBooks[j] = uint8(b - 1)
			c.subUsed |= 1 << j
		}
	}

	mult, err := bs.ReadBitsLeq32(2)
	if err != nil {
		return nil, err
	}
	f.multiplier = int32(mult + 1)

	rangeBits, err := bs.ReadBitsLeq32(4)
	if err != nil {
		return nil, err
	}

	f.xs = []uint32{0, 1 << rangeBits}
	for _, ci := range f.partitionClass {
		for range f.classes[ci].dims {
			if len(f.xs) == floor1MaxPoints {
				return nil, wrapErr(ErrInvalidSetup, "floor1 has more than %d points", floor1MaxPoints)
			}

			x, err := bs.ReadBitsLeq32(rangeBits)
			if err != nil {
				return nil, err
			}
			f.xs = append(f.xs, x)
		}
	}

	if err := f.prepare(); err != nil {
		return nil, err
	}

	return &f, nil
}

// prepare derives the neighbour and sort tables from the x list.
func (f *floor1) prepare() error {
	n := len(f.xs)

	f.sorted = make([]int, n)
	for i := range f.sorted {
		f.sorted[i] = i
	}
	slices.SortStableFunc(f.sorted, func(a, b int) int {
		return int(f.xs[a]) - int(f.xs[b])
	})

	for i := 1; i < n; i++ {
		if f.xs[f.sorted[i]] == f.xs[f.sorted[i-1]] {
			return wrapErr(ErrInvalidSetup, "floor1 x value %d repeats", f.xs[f.sorted[i]])
		}
	}

	f.neighbours = make([][2]int, n)
	for i := 2; i < n; i++ {
		low, high := 0, 1
		for j := range i {
			if f.xs[j] < f.xs[i] && f.xs[j] > f.xs[low] {
				low = j
			}
			if f.xs[j] > f.xs[i] && f.xs[j] < f.xs[high] {
				high = j
			}
		}
		f.neighbours[i] = [2]int{low, high}
	}

	f.y = make([]uint32, n)
	f.finalY = make([]int32, n)
	f.step2 = make([]bool, n)

	return nil
}

func (f *floor1) readChannel(bs *bits.ReaderRtl, books []*vorbisCodebook) (bool, error) {
	used, err := bs.ReadBool()
	if err != nil || !used {
		return false, endOfPacketOK(err)
	}

	yBits := ilog(uint32(floor1Ranges[f.multiplier-1] - 1))

	for i := range 2 {
		if f.y[i], err = bs.ReadBitsLeq32(yBits); err != nil {
			return false, endOfPacketOK(err)
		}
	}

	off := 2
	for _, ci := range f.partitionClass {
		class := &f.classes[ci]
		csub := uint32(1)<<class.subBits - 1

		var cval uint32
		if class.subBits > 0 {
			if cval, err = books[class.mainBook].readScalar(bs); err != nil {
				return false, endOfPacketOK(err)
			}
		}

		for j := range class.dims {
			sub := cval & csub
			cval >>= class.subBits

			f.y[off+int(j)] = 0
			if class.subUsed&(1<<sub) != 0 {
				v, err := books[class.subBooks[sub]].readScalar(bs)
				if err != nil {
					return false, endOfPacketOK(err)
				}
				f.y[off+int(j)] = v
			}
		}

		off += int(class.dims)
	}

	return true, nil
}

func (f *floor1) synthesis(out []float32) error {
	f.amplitudes()
	f.render(out)
	return nil
}

// amplitudes predicts each point from its neighbours and applies the
// decoded offset.
func (f *floor1) amplitudes() {
	rng := floor1Ranges[f.multiplier-1]

	f.finalY[0] = int32(f.y[0])
	f.finalY[1] = int32(f.y[1])
	f.step2[0] = true
	f.step2[1] = true

	for i := 2; i < len(f.xs); i++ {
		lo, hi := f.neighbours[i][0], f.neighbours[i][1]

		pred := renderPoint(f.xs[lo], f.finalY[lo], f.xs[hi], f.finalY[hi], f.xs[i])
		val := int32(f.y[i])
		highRoom := rng - pred
		lowRoom := pred

		if val == 0 {
			f.step2[i] = false
			f.finalY[i] = pred
			continue
		}

		room := 2 * lowRoom
		if highRoom < lowRoom {
			room = 2 * highRoom
		}

		f.step2[lo] = true
		f.step2[hi] = true
		f.step2[i] = true

		switch {
		case val >= room && highRoom > lowRoom:
			f.finalY[i] = val - lowRoom + pred
		case val >= room:
			f.finalY[i] = pred - val + highRoom - 1
		case val%2 == 1:
			f.finalY[i] = pred - (val+1)/2
		default:
			f.finalY[i] = pred + val/2
		}
	}
}

// render draws line segments between the points in x order.
func (f *floor1) render(out []float32) {
	n := uint32(len(out))

	lx := uint32(0)
	ly := f.finalY[f.sorted[0]] * f.multiplier
	hx, hy := lx, ly

	for _, i := range f.sorted[1:] {
		if !f.step2[i] {
			continue
		}

		hx = f.xs[i]
		hy = f.finalY[i] * f.multiplier
		renderLine(lx, ly, hx, hy, out)
		lx, ly = hx, hy
	}

	if hx < n {
		renderLine(hx, hy, n, hy, out)
	}
}

func renderPoint(x0 uint32, y0 int32, x1 uint32, y1 int32, x uint32) int32 {
	dy := y1 - y0
	adx := int32(x1 - x0)
	off := abs(dy) * int32(x-x0) / adx

	if dy < 0 {
		return y0 - off
	}
	return y0 + off
}

// renderLine fills out[x0:min(x1, len(out))] with a line from y0 to y1 in
// the dB domain.
func renderLine(x0 uint32, y0 int32, x1 uint32, y1 int32, out []float32) {
	n := uint32(len(out))
	dy := y1 - y0
	adx := int32(x1 - x0)

	base := dy / adx
	sy := base + 1
	if dy < 0 {
		sy = base - 1
	}
	ady := abs(dy) - abs(base)*adx

	y := y0
	if x0 < n {
		out[x0] = inverseDB(y)
	}

	var e int32
	for x := x0 + 1; x < min(n, x1); x++ {
		e += ady
		if e >= adx {
			e -= adx
			y += sy
		} else {
			y += base
		}
		out[x] = inverseDB(y)
	}
}

func inverseDB(y int32) float32 {
	return inverseDBTable[min(max(y, 0), 255)]
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

var inverseDBTable = [256]float32{
	1.0649863e-07, 1.1341951e-07, 1.2079015e-07, 1.2863978e-07,
	1.3699951e-07, 1.4590251e-07, 1.5538408e-07, 1.6548181e-07,
	1.7623575e-07, 1.8768855e-07, 1.9988561e-07, 2.1287530e-07,
	2.2670913e-07, 2.4144197e-07, 2.5713223e-07, 2.7384213e-07,
	2.9163793e-07, 3.1059021e-07, 3.3077411e-07, 3.5226968e-07,
	3.7516214e-07, 3.9954229e-07, 4.2550680e-07, 4.5315863e-07,
	4.8260743e-07, 5.1396998e-07, 5.4737065e-07, 5.8294187e-07,
	6.2082472e-07, 6.6116941e-07, 7.0413592e-07, 7.4989464e-07,
	7.9862701e-07, 8.5052630e-07, 9.0579828e-07, 9.6466216e-07,
	1.0273513e-06, 1.0941144e-06, 1.1652161e-06, 1.2409384e-06,
	1.3215816e-06, 1.4074654e-06, 1.4989305e-06, 1.5963394e-06,
	1.7000785e-06, 1.8105592e-06, 1.9282195e-06, 2.0535261e-06,
	2.1869758e-06, 2.3290978e-06, 2.4804557e-06, 2.6416497e-06,
	2.8133190e-06, 2.9961443e-06, 3.1908506e-06, 3.3982101e-06,
	3.6190449e-06, 3.8542308e-06, 4.1047004e-06, 4.3714470e-06,
	4.6555282e-06, 4.9580707e-06, 5.2802740e-06, 5.6234160e-06,
	5.9888572e-06, 6.3780469e-06, 6.7925283e-06, 7.2339451e-06,
	7.7040476e-06, 8.2047000e-06, 8.7378876e-06, 9.3057248e-06,
	9.9104632e-06, 1.0554501e-05, 1.1240392e-05, 1.1970856e-05,
	1.2748789e-05, 1.3577278e-05, 1.4459606e-05, 1.5399272e-05,
	1.6400004e-05, 1.7465768e-05, 1.8600792e-05, 1.9809576e-05,
	2.1096914e-05, 2.2467911e-05, 2.3928002e-05, 2.5482978e-05,
	2.7139006e-05, 2.8902651e-05, 3.0780908e-05, 3.2781225e-05,
	3.4911534e-05, 3.7180282e-05, 3.9596466e-05, 4.2169667e-05,
	4.4910090e-05, 4.7828601e-05, 5.0936773e-05, 5.4246931e-05,
	5.7772202e-05, 6.1526565e-05, 6.5524908e-05, 6.9783085e-05,
	7.4317983e-05, 7.9147585e-05, 8.4291040e-05, 8.9768747e-05,
	9.5602426e-05, 0.00010181521, 0.00010843174, 0.00011547824,
	0.00012298267, 0.00013097477, 0.00013948625, 0.00014855085,
	0.00015820453, 0.00016848555, 0.00017943469, 0.00019109536,
	0.00020351382, 0.00021673929, 0.00023082423, 0.00024582449,
	0.00026179955, 0.00027881276, 0.00029693158, 0.00031622787,
	0.00033677814, 0.00035866388, 0.00038197188, 0.00040679456,
	0.00043323036, 0.00046138411, 0.00049136745, 0.00052329927,
	0.00055730621, 0.00059352311, 0.00063209358, 0.00067317058,
	0.00071691700, 0.00076350630, 0.00081312324, 0.00086596457,
	0.00092223983, 0.00098217216, 0.0010459992, 0.0011139742,
	0.0011863665, 0.0012634633, 0.0013455702, 0.0014330129,
	0.0015261382, 0.0016253153, 0.0017309374, 0.0018434235,
	0.0019632195, 0.0020908006, 0.0022266726, 0.0023713743,
	0.0025254795, 0.0026895994, 0.0028643847, 0.0030505286,
	0.0032487691, 0.0034598925, 0.0036847358, 0.0039241906,
	0.0041792066, 0.0044507950, 0.0047400328, 0.0050480668,
	0.0053761186, 0.0057254891, 0.0060975636, 0.0064938176,
	0.0069158225, 0.0073652516, 0.0078438871, 0.0083536271,
	0.0088964928, 0.009474637, 0.010090352, 0.010746080,
	0.011444421, 0.012188144, 0.012980198, 0.013823725,
	0.014722068, 0.015678791, 0.016697687, 0.017782797,
	0.018938423, 0.020169149, 0.021479854, 0.022875735,
	0.024362330, 0.025945531, 0.027631618, 0.029427276,
	0.031339626, 0.033376252, 0.035545228, 0.037855157,
	0.040315199, 0.042935108, 0.045725273, 0.048696758,
	0.051861348, 0.055231591, 0.058820850, 0.062643361,
	0.066714279, 0.071049749, 0.075666962, 0.080584227,
	0.085821044, 0.091398179, 0.097337747, 0.10366330,
	0.11039993, 0.11757434, 0.12521498, 0.13335215,
	0.14201813, 0.15124727, 0.16107617, 0.17154380,
	0.18269168, 0.19456402, 0.20720788, 0.22067342,
	0.23501402, 0.25028656, 0.26655159, 0.28387361,
	0.30232132, 0.32196786, 0.34289114, 0.36517414,
	0.38890521, 0.41417847, 0.44109412, 0.46975890,
	0.50028648, 0.53279791, 0.56742212, 0.60429640,
	0.64356699, 0.68538959, 0.72993007, 0.77736504,
	0.82788260, 0.88168307, 0.9389798, 1.0,
}
