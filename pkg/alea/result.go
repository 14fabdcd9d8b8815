package alea

import (
	"math"

	"github.com/pkg/errors"
	"github.com/timescale/tsbs-alea/pkg/computed"
	"github.com/timescale/tsbs-alea/pkg/serialize"
)

// maxSerializedSize bounds sizes read back from archives, so a corrupt
// stream cannot trigger a huge allocation.
const maxSerializedSize = 1 << 28

// ErrCorruptResult signals persisted result data that cannot be valid.
var ErrCorruptResult = errors.New("alea: corrupt result data")

// Every result starts with its size and sample count. Token streams cannot
// report shapes, so the size is persisted explicitly and read first.
func writeHeader(s serialize.Serializer, size int, count uint64) error {
	if err := serialize.WriteScalar(s, "@size", uint64(size)); err != nil {
		return err
	}
	return serialize.WriteScalar(s, "count", count)
}

func readHeader(d serialize.Deserializer) (int, uint64, error) {
	size, err := readSize(d, "@size")
	if err != nil {
		return 0, 0, err
	}
	count, err := serialize.ReadScalar[uint64](d, "count")
	if err != nil {
		return 0, 0, err
	}
	return size, count, nil
}

func readSize(d serialize.Deserializer, key string) (int, error) {
	size, err := serialize.ReadScalar[uint64](d, key)
	if err != nil {
		return 0, err
	}
	if size > maxSerializedSize {
		return 0, errors.Wrapf(ErrCorruptResult, "%s = %d", key, size)
	}
	return int(size), nil
}

// re returns the real part of x.
func re[T computed.Scalar](x T) float64 {
	if c, ok := any(x).(complex128); ok {
		return real(c)
	}
	return any(x).(float64)
}

func sampleVariance(m2 float64, count uint64) float64 {
	if count < 2 {
		return math.NaN()
	}
	return m2 / float64(count-1)
}
