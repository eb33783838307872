package utils

import (
	"fmt"

	dockertest "github.com/ory/dockertest/v3"
)

// findOrCreateDockerNetworkByID attaches test containers to an existing network when an ID is
// given (CI runs the tests inside a container), and creates a throwaway network otherwise.
// The returned bool is true when the caller owns the network and has to remove it.
func findOrCreateDockerNetworkByID(pool *dockertest.Pool, networkID string) (bool, string, *dockertest.Network, error) {
	if networkID == "" {
		networkName := fmt.Sprintf("test-network-%s", randResourceNameSuffix(10))
		network, err := pool.CreateNetwork(networkName)
		if err != nil {
			return true, "", nil, err
		}
		return true, networkName, network, nil
	}

	externalNetworks, err := pool.Client.ListNetworks()
	if err != nil {
		return false, "", nil, err
	}

	for _, externalNetwork := range externalNetworks {
		if externalNetwork.ID != networkID {
			continue
		}

		networks, err := pool.NetworksByName(externalNetwork.Name)
		if err != nil {
			return false, "", nil, err
		}
		if len(networks) == 0 {
			return false, "", nil, fmt.Errorf("could not find network with ID %s by name: %s", networkID, externalNetwork.Name)
		}

		return false, networks[0].Network.Name, &networks[0], nil
	}

	return false, "", nil, fmt.Errorf("could not find network by ID: %s", networkID)
}
