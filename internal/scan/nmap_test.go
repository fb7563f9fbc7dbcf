package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNmapXML = `<?xml version="1.0"?>
<nmaprun>
  <host>
    <address addr="10.0.0.1" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="25565"><state state="open"/></port>
      <port protocol="tcp" portid="25566"><state state="closed"/></port>
    </ports>
  </host>
  <host>
    <address addr="10.0.0.2" addrtype="ipv4"/>
    <ports></ports>
  </host>
</nmaprun>`

func TestParseNmapXML(t *testing.T) {
	targets, err := ParseNmapXML([]byte(sampleNmapXML))
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, Target{Host: "10.0.0.1", Port: 25565}, targets[0])
	assert.Equal(t, Target{Host: "10.0.0.1", Port: 25566}, targets[1])
}

func TestParseNmapXMLRejectsMalformedInput(t *testing.T) {
	_, err := ParseNmapXML([]byte("not xml"))
	assert.Error(t, err)
}
