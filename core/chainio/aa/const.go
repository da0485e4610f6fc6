package aa

import (
	"github.com/ethereum/go-ethereum/common"
)

var (
	// EntrypointAddress is the canonical EntryPoint v0.6 deployment.
	EntrypointAddress = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

	// UserOperationEventTopic is the topic0 of EntryPoint's UserOperationEvent.
	UserOperationEventTopic = common.HexToHash("0x49628fd1471006c1482da88028e9ce4dbb080b815c9b0344d39e5a8e6ec1419f")
)

func SetEntrypointAddress(address common.Address) {
	EntrypointAddress = address
}
