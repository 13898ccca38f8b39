package spec_2022_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	enc "github.com/ndnrtr/fwcore/std/encoding"
	"github.com/ndnrtr/fwcore/std/ndn"
	spec "github.com/ndnrtr/fwcore/std/ndn/spec_2022"
	"github.com/ndnrtr/fwcore/std/types/optional"
)

func TestDataRoundTrip(t *testing.T) {
	s := &spec.Spec{}
	name, err := enc.NameFromStr("/ndn/edu/ucla/ping/123")
	require.NoError(t, err)

	cfg := &ndn.DataConfig{
		ContentType: optional.Some(ndn.ContentTypeBlob),
		Freshness:   optional.Some(4 * time.Second),
	}
	content := enc.Wire{[]byte("hello world")}

	data, err := s.MakeData(name, cfg, content, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data.Wire)

	raw := data.Wire.Join()
	got, covered, err := s.ReadData(raw)
	require.NoError(t, err)
	require.True(t, name.Equal(got.Name()))
	require.Equal(t, []byte("hello world"), got.Content().Join())

	ct, ok := got.ContentType().Get()
	require.True(t, ok)
	require.Equal(t, ndn.ContentTypeBlob, ct)

	fr, ok := got.Freshness().Get()
	require.True(t, ok)
	require.Equal(t, 4*time.Second, fr)

	require.Equal(t, ndn.SignatureDigestSha256, got.Signature().SigType())
	require.Less(t, len(covered.Join()), len(raw))
}

func TestDataRoundTripNoContent(t *testing.T) {
	s := &spec.Spec{}
	name, err := enc.NameFromStr("/a/b")
	require.NoError(t, err)

	data, err := s.MakeData(name, nil, nil, nil)
	require.NoError(t, err)

	got, _, err := s.ReadData(data.Wire.Join())
	require.NoError(t, err)
	require.True(t, name.Equal(got.Name()))
	require.Empty(t, got.Content().Join())
}

func TestInterestRoundTrip(t *testing.T) {
	s := &spec.Spec{}
	name, err := enc.NameFromStr("/ndn/edu/ucla/ping")
	require.NoError(t, err)

	cfg := &ndn.InterestConfig{
		CanBePrefix: true,
		MustBeFresh: true,
		Nonce:       optional.Some(uint32(0xdeadbeef)),
		Lifetime:    optional.Some(2 * time.Second),
	}

	it, err := s.MakeInterest(name, cfg, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, it.Wire)

	got, err := s.ReadInterest(it.Wire.Join())
	require.NoError(t, err)
	require.True(t, name.Equal(got.Name()))
	require.True(t, got.CanBePrefix())
	require.True(t, got.MustBeFresh())

	nonce, ok := got.Nonce().Get()
	require.True(t, ok)
	require.Equal(t, uint32(0xdeadbeef), nonce)

	lifetime, ok := got.Lifetime().Get()
	require.True(t, ok)
	require.Equal(t, 2*time.Second, lifetime)
}

func TestInterestRoundTripWithAppParam(t *testing.T) {
	s := &spec.Spec{}
	name, err := enc.NameFromStr("/a/b/params-sha256=00")
	require.NoError(t, err)

	appParam := enc.Wire{[]byte("params")}
	it, err := s.MakeInterest(name, &ndn.InterestConfig{}, appParam, nil)
	require.NoError(t, err)

	got, err := s.ReadInterest(it.Wire.Join())
	require.NoError(t, err)
	require.Equal(t, []byte("params"), got.AppParam().Join())
	require.False(t, got.CanBePrefix())
}
