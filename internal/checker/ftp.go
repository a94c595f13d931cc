package checker

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the FTP/SFTP checks
const (
	cfgHost = "host"
	cfgPort = "port"
)

// FTPCheck proves reachability of an FTP drop by connecting, logging in and
// listing the root directory.
type FTPCheck struct {
	pools PoolReporter
}

// NewFTPCheck creates the FTP check strategy. The reporter may be nil.
func NewFTPCheck(pools PoolReporter) *FTPCheck {
	return &FTPCheck{pools: pools}
}

func (c *FTPCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	host := adapter.ConfigValue(cfgHost, "")
	if host == "" {
		return unhealthySince(start, "no host configured")
	}
	addr := net.JoinHostPort(host, adapter.ConfigValue(cfgPort, "21"))

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("connect to %s failed: %v", addr, err))
	}
	defer conn.Quit()

	if c.pools != nil {
		c.pools.ConnectionOpened(adapter.ID)
		defer c.pools.ConnectionClosed(adapter.ID)
	}

	// Anonymous fallback when no credentials are configured
	user := adapter.ConfigValue(cfgUsername, "anonymous")
	pass := adapter.ConfigValue(cfgPassword, "anonymous")
	if err := conn.Login(user, pass); err != nil {
		return unhealthySince(start, fmt.Sprintf("login as %s failed: %v", user, err))
	}

	if _, err := conn.NameList("/"); err != nil {
		return unhealthySince(start, fmt.Sprintf("list root failed: %v", err))
	}

	return healthySince(start)
}

// SFTPCheck proves reachability of an SFTP endpoint by completing the SSH
// handshake, opening an SFTP session and printing the working directory.
type SFTPCheck struct {
	pools PoolReporter
}

// NewSFTPCheck creates the SFTP check strategy. The reporter may be nil.
func NewSFTPCheck(pools PoolReporter) *SFTPCheck {
	return &SFTPCheck{pools: pools}
}

func (c *SFTPCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()

	host := adapter.ConfigValue(cfgHost, "")
	if host == "" {
		return unhealthySince(start, "no host configured")
	}
	user := adapter.ConfigValue(cfgUsername, "")
	if user == "" {
		return unhealthySince(start, "no username configured")
	}
	addr := net.JoinHostPort(host, adapter.ConfigValue(cfgPort, "22"))

	sshConfig := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(adapter.ConfigValue(cfgPassword, "")),
		},
		// Adapter endpoints are configured, not discovered; host keys are
		// not pinned here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	sshConn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("ssh handshake with %s failed: %v", addr, err))
	}
	defer sshConn.Close()

	if c.pools != nil {
		c.pools.ConnectionOpened(adapter.ID)
		defer c.pools.ConnectionClosed(adapter.ID)
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("sftp session failed: %v", err))
	}
	defer client.Close()

	if _, err := client.Getwd(); err != nil {
		return unhealthySince(start, fmt.Sprintf("pwd failed: %v", err))
	}

	return healthySince(start)
}
