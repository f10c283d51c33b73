package app

import (
	"math/rand/v2"
	"strconv"

	"github.com/dkeye/Karaoke/internal/domain"
)

const (
	codeMin = 100000
	codeMax = 999999
)

type CodeGenerator interface {
	Generate() domain.SessionCode
}

// RandomCodes draws uniformly from [100000, 999999]. It keeps no state and
// may repeat a code that is already in use.
type RandomCodes struct{}

func (RandomCodes) Generate() domain.SessionCode {
	return domain.SessionCode(strconv.Itoa(codeMin + rand.IntN(codeMax-codeMin+1)))
}
