package address

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// DefaultHost is used when only the port is given.
const DefaultHost = "0.0.0.0"

var (
	ErrNoPort  = errors.New("no port given")
	ErrBadPort = errors.New("invalid port")
)

type Address struct {
	Host string
	Port uint16
}

// Parse splits the listen address into host and port. The host may be omitted, the port
// may not. Port 0 stands for an ephemeral one.
func Parse(addr string) (Address, error) {
	if strings.IndexByte(addr, ':') == -1 {
		return Address{}, ErrNoPort
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Address{}, err
	}

	if len(host) == 0 {
		host = DefaultHost
	}

	num, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Address{}, errors.Join(ErrBadPort, errors.New(port))
	}

	return Address{
		Host: host,
		Port: uint16(num),
	}, nil
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

func (a Address) IsLocalhost() bool {
	if strings.EqualFold(a.Host, "localhost") {
		return true
	}

	ip := net.ParseIP(a.Host)
	return ip != nil && ip.IsLoopback()
}
