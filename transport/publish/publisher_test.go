package publish_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/onflow/urts-dps/codec"
	"github.com/onflow/urts-dps/model/urts"
	"github.com/onflow/urts-dps/transport/publish"
)

func TestPublishFanOut(t *testing.T) {
	log := zerolog.Nop()
	cdc := codec.New()
	address := "127.0.0.1:28617"

	pub, err := publish.Bind(address, cdc, log)
	require.NoError(t, err)
	defer pub.Close()

	sub1, err := publish.Subscribe(address, cdc, log)
	require.NoError(t, err)
	defer sub1.Close()

	sub2, err := publish.Subscribe(address, cdc, log)
	require.NoError(t, err)
	defer sub2.Close()

	time.Sleep(50 * time.Millisecond)

	packet := urts.ProbabilityPacket{
		Identity:          urts.Identity{Network: "UU", Station: "WPUT", Channel: "HHZ", Location: "01"},
		SamplingRate:      100,
		StartTimeUS:       0,
		Data:              []float64{0.1, 0.2, 0.3},
		PositiveClassName: "P",
		NegativeClassName: "noise",
		Algorithm:         "eqt",
	}
	pub.Publish(packet)

	for _, sub := range []*publish.Subscriber{sub1, sub2} {
		env, err := sub.Next()
		require.NoError(t, err)
		require.Equal(t, "ProbabilityPacket", env.Type)

		var have urts.ProbabilityPacket
		err = cdc.Unpack(env, "ProbabilityPacket", &have)
		require.NoError(t, err)
		require.Equal(t, packet, have)
	}
}
