// Package common holds the pieces rpc/server, rpc/client, rpc/session and
// the cmd binaries all need but that don't belong to any one of them:
// ServerConfig/ClientConfig and a small leveled logger.
package common
