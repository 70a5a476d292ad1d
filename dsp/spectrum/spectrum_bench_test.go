package spectrum

import (
	"fmt"
	"math"
	"testing"
)

func BenchmarkMagnitude(b *testing.B) {
	for _, size := range []int{64, 1024, 16384} {
		b.Run(fmt.Sprint(size), func(b *testing.B) {
			inData := make([]complex128, size)
			for i := range inData {
				inData[i] = complex(float64(i)/10.0, float64(size-i)/10.0)
			}

			b.SetBytes(int64(size * 16)) // complex128 = 16 bytes
			b.ResetTimer()

			for range b.N {
				_ = Magnitude(inData)
			}
		})
	}
}

func BenchmarkGroupDelay(b *testing.B) {
	for _, irLen := range []int{512, 4096, 48000} {
		b.Run(fmt.Sprint(irLen), func(b *testing.B) {
			ir := make([]float64, irLen)
			for i := range ir {
				ir[i] = math.Exp(-float64(i)/float64(irLen/8)) * math.Cos(0.37*float64(i))
			}

			b.ResetTimer()

			for range b.N {
				_, _ = GroupDelay(ir, 2048)
			}
		})
	}
}
