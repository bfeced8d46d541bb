package ctrl

import (
	"bufio"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"net"
	"strings"
)

func init() {
	clientCmd.Flags().StringVarP(&clientCommand, "command", "c", "write", "Command to send (start, stop, write, clean)")
	ctrlCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <socket>",
	Short: "Send a command to a metrics instrument controller",
	Args:  cobra.ExactArgs(1),
	Run:   client,
}
var clientCommand string

func client(_ *cobra.Command, args []string) {
	addr, err := net.ResolveUnixAddr("unix", args[0])
	if err != nil {
		logrus.Fatalf("error resolving [%s] (%v)", args[0], err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		logrus.Fatalf("error dialing [%s] (%v)", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write([]byte(fmt.Sprintf("%s\n", clientCommand))); err != nil {
		logrus.Fatalf("error sending command (%v)", err)
	}
	response, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		logrus.Fatalf("error reading response (%v)", err)
	}
	logrus.Infof("response: %s", strings.TrimSpace(response))
}
