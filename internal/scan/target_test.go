package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPortsSingleAndRange(t *testing.T) {
	ports, err := ExpandPorts([]string{"25565", "25560-25562"})
	require.NoError(t, err)
	assert.Equal(t, []uint16{25565, 25560, 25561, 25562}, ports)
}

func TestExpandPortsDeduplicates(t *testing.T) {
	ports, err := ExpandPorts([]string{"25565", "25565", "25560-25565"})
	require.NoError(t, err)
	assert.Equal(t, []uint16{25565, 25560, 25561, 25562, 25563, 25564}, ports)
}

func TestExpandPortsRejectsOutOfRange(t *testing.T) {
	_, err := ExpandPorts([]string{"0"})
	assert.Error(t, err)
	_, err = ExpandPorts([]string{"65536"})
	assert.Error(t, err)
}

func TestExpandPortsRejectsReversedRange(t *testing.T) {
	_, err := ExpandPorts([]string{"100-50"})
	assert.Error(t, err)
}

func TestExpandHostsCIDR(t *testing.T) {
	// spec.md §8 scenario 6: 10.0.0.0/30 expands to exactly four
	// addresses, including the network and broadcast addresses.
	hosts, err := ExpandHosts("10.0.0.0/30")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3"}, hosts)
}

func TestExpandHostsSingleTargetPassesThrough(t *testing.T) {
	hosts, err := ExpandHosts("mc.example.org")
	require.NoError(t, err)
	assert.Equal(t, []string{"mc.example.org"}, hosts)
}

func TestExpandHostsRejectsEmpty(t *testing.T) {
	_, err := ExpandHosts("")
	assert.Error(t, err)
}

func TestBuildTargetsCrossProduct(t *testing.T) {
	// spec.md §8 scenario 6: 10.0.0.0/30 x {25565, 25566} -> 8 pairs.
	hosts, err := ExpandHosts("10.0.0.0/30")
	require.NoError(t, err)
	ports, err := ExpandPorts([]string{"25565-25566"})
	require.NoError(t, err)

	targets := BuildTargets(hosts, ports, false, false)
	require.Len(t, targets, 8)
	assert.Equal(t, Target{Host: "10.0.0.0", Port: 25565}, targets[0])
	assert.Equal(t, Target{Host: "10.0.0.3", Port: 25566}, targets[7])
}

func TestBuildTargetsRandomizePreservesSetMembership(t *testing.T) {
	hosts := []string{"a", "b", "c"}
	ports := []uint16{1, 2}
	targets := BuildTargets(hosts, ports, true, true)
	assert.Len(t, targets, 6)

	seen := map[Target]bool{}
	for _, tg := range targets {
		seen[tg] = true
	}
	for _, h := range hosts {
		for _, p := range ports {
			assert.True(t, seen[Target{Host: h, Port: p}])
		}
	}
}
