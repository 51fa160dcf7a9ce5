// Package msgs defines the L1 remote API of the transmitter.
//
// Commands (Request, StatusQuery) travel from clients to the daemon and are
// answered with replies sharing their sequence number. Events (StatusChanged)
// are published by the daemon whenever the chip configuration changes.
package msgs
