// Package discovery finds uwbd daemons on the local network via mDNS.
//
// Daemons listening on TCP advertise the _uwbd._tcp service with TXT
// records describing the protocol version and the adapters they expose.
// Clients browse for daemons or resolve the first one found; daemons (and
// tests) use the Advertiser side. Local daemons reachable over a unix
// socket do not advertise.
package discovery
