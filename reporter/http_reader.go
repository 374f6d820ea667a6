// Reader is a testing facility to read the output of a http reporter.

package reporter

import (
	"io"
	"net/http"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
	}
}

func (hr *HttpReader) get(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (hr *HttpReader) GetHello() (string, error) {
	return hr.get("http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_HELLO)
}

func (hr *HttpReader) GetEscrowStatus(seedHex string) (string, error) {
	return hr.get("http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_ESCROW + "?seed=" + seedHex)
}

func (hr *HttpReader) GetAttemptStatus(executionID string) (string, error) {
	return hr.get("http://" + hr.serverIP + ":" + hr.serverPort + ROUTE_ATTEMPT + "?execution_id=" + executionID)
}
