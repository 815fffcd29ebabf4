package pixmap

// Vector holds the channel values of one pixel during arithmetic.
type Vector [MaxComponents]float64

// Sample holds the raw channels of one pixel.
type Sample [MaxComponents]byte

// Load reads the channels of px into v.
func (v *Vector) Load(px []byte) {
	for i, c := range px {
		v[i] = float64(c)
	}
}

// Load reads the channels of px into s.
func (s *Sample) Load(px []byte) {
	copy(s[:], px)
}

// ClampByte saturates v to [0, 255], dropping the fractional part.
func ClampByte(v float64) byte {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}
