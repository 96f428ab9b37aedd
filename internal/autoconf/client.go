package autoconf

import (
	"context"
	"net/rpc"
	"time"

	"github.com/google/uuid"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/netaddr"
)

// unavailableMsg is shown when no service answers on the socket.
const unavailableMsg = "the auto-configuration service needs to run for the auto configuration"

// Client talks to a running auto-configuration service. It satisfies
// netif.AutoConfigurer.
type Client struct {
	SocketPath string
	// Timeout bounds each call on top of the caller's context.
	Timeout time.Duration
}

// NewClient returns a Client for the service on socket.
func NewClient(socket string, timeout time.Duration) *Client {
	return &Client{SocketPath: socket, Timeout: timeout}
}

func (c *Client) dial() (*rpc.Client, error) {
	client, err := rpc.Dial("unix", c.SocketPath)
	if err != nil {
		logging.WithComponent("autoconf").Debug("dial failed", "socket", c.SocketPath, "error", err)
		return nil, errors.Attr(errors.New(errors.KindUnavailable, unavailableMsg), "socket", c.SocketPath)
	}
	return client, nil
}

// call runs one RPC and gives up when ctx ends.
func (c *Client) call(ctx context.Context, method string, args, reply any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	client, err := c.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	call := client.Go(rpcName+"."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			if call.Error == rpc.ErrShutdown {
				return errors.New(errors.KindUnavailable, unavailableMsg)
			}
			return errors.Wrapf(call.Error, errors.KindOperation, "%s failed", method)
		}
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), errors.KindTimeout, "%s did not complete", method)
	}
}

// Configure asks the service to auto-configure family on iface and waits
// for the outcome.
func (c *Client) Configure(ctx context.Context, iface string, family netaddr.Family) error {
	args := &ConfigureArgs{
		RequestID: uuid.NewString(),
		Interface: iface,
		Family:    int(family),
		Timeout:   c.Timeout,
	}
	var reply ConfigureReply
	if err := c.call(ctx, "Configure", args, &reply); err != nil {
		return err
	}
	if reply.Error != "" {
		kind := errors.Kind(reply.ErrorKind)
		if kind == errors.KindUnknown {
			kind = errors.KindOperation
		}
		return errors.Attr(errors.New(kind, reply.Error), "request", reply.RequestID)
	}
	return nil
}

// Leases lists the leases the service maintains.
func (c *Client) Leases(ctx context.Context) ([]LeaseInfo, error) {
	var reply LeasesReply
	if err := c.call(ctx, "Leases", &Empty{}, &reply); err != nil {
		return nil, err
	}
	return reply.Leases, nil
}
