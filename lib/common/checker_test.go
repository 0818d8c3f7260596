package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecker(t *testing.T) {
	limit := 10
	funcs := []CheckerFunc{}
	var dones []interface{}
	for i := 0; i < limit; i++ {
		f := func(checker Checker, args ...interface{}) error {
			dones = append(dones, checker)
			return nil
		}
		funcs = append(funcs, f)
	}

	checker := &DefaultChecker{funcs}
	require.NoError(t, RunChecker(checker, DefaultDeferFunc))
	require.Equal(t, limit, len(dones))
}

type CheckerWithProperties struct {
	DefaultChecker

	P0 int
}

func TestCheckerStopsAtFirstError(t *testing.T) {
	stop := errors.New("stop here")

	var executed []int
	funcs := []CheckerFunc{
		func(c Checker, args ...interface{}) error {
			c.(*CheckerWithProperties).P0 = 99
			executed = append(executed, 0)
			return nil
		},
		func(c Checker, args ...interface{}) error {
			executed = append(executed, 1)
			return stop
		},
		func(c Checker, args ...interface{}) error {
			executed = append(executed, 2)
			return nil
		},
	}

	var deferred []int
	deferFunc := func(i int, c Checker, err error) {
		deferred = append(deferred, i)
	}

	checker := &CheckerWithProperties{DefaultChecker: DefaultChecker{funcs}}
	err := RunChecker(checker, deferFunc)
	require.Equal(t, stop, err)
	require.Equal(t, 99, checker.P0)
	require.Equal(t, []int{0, 1}, executed)
	require.Equal(t, []int{0, 1}, deferred)
}

func TestCheckerNilDeferFunc(t *testing.T) {
	checker := &DefaultChecker{[]CheckerFunc{
		func(c Checker, args ...interface{}) error {
			require.Equal(t, []interface{}{"a", 1}, args)
			return nil
		},
	}}
	require.NoError(t, RunChecker(checker, nil, "a", 1))
}
