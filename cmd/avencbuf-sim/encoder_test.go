package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avencbuf/types"
)

func TestParseGOP(t *testing.T) {
	gop, err := parseGOP("IPb")
	require.NoError(t, err)
	require.Equal(t, []gopFrame{
		{CodingType: types.CodingTypeI, IsRef: true},
		{CodingType: types.CodingTypeP, IsRef: true},
		{CodingType: types.CodingTypeB, IsRef: false},
	}, gop)

	_, err = parseGOP("IPX")
	require.Error(t, err)
	_, err = parseGOP("")
	require.Error(t, err)
}
