package buffer

import (
	"fmt"
	"os"

	"github.com/neovim/go-client/nvim"
)

// NvimClient owns a connection to a running Neovim instance.
type NvimClient struct {
	v *nvim.Nvim
}

// DialNvim connects to the Neovim instance named by NVIM_LISTEN_ADDRESS
// (or NVIM, as set for jobs spawned by nvim itself).
func DialNvim() (*NvimClient, error) {
	addr := os.Getenv("NVIM_LISTEN_ADDRESS")
	if addr == "" {
		addr = os.Getenv("NVIM")
	}
	if addr == "" {
		return nil, fmt.Errorf("no running nvim instance: NVIM_LISTEN_ADDRESS is unset")
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("dialing nvim at %s: %w", addr, err)
	}
	return &NvimClient{v: v}, nil
}

// Close closes the connection. Buffers opened through the client become
// invalid.
func (c *NvimClient) Close() error {
	if c.v != nil {
		return c.v.Close()
	}
	return nil
}

// Open loads path into a Neovim buffer and returns its handle.
func (c *NvimClient) Open(path string) (*NvimBuffer, error) {
	if err := c.v.Command(fmt.Sprintf("silent! edit %s", path)); err != nil {
		return nil, fmt.Errorf("editing %s: %w", path, err)
	}

	buf, err := c.v.CurrentBuffer()
	if err != nil {
		return nil, fmt.Errorf("getting current buffer: %w", err)
	}

	return &NvimBuffer{v: c.v, buf: buf, name: path}, nil
}

// NvimBuffer adapts a Neovim buffer to the Buffer contract.
type NvimBuffer struct {
	v    *nvim.Nvim
	buf  nvim.Buffer
	name string
}

// Name returns the path the buffer was opened with.
func (b *NvimBuffer) Name() string { return b.name }

// Modified queries the buffer-local 'modified' option.
func (b *NvimBuffer) Modified() (bool, error) {
	var modified bool
	if err := b.v.BufferOption(b.buf, "modified", &modified); err != nil {
		return false, fmt.Errorf("querying modified on %s: %w", b.name, err)
	}
	return modified, nil
}

// Valid reports whether the buffer still exists in the editor.
func (b *NvimBuffer) Valid() bool {
	ok, err := b.v.IsBufferValid(b.buf)
	return err == nil && ok
}

// Dispose force-deletes the buffer so the next open reloads from disk.
func (b *NvimBuffer) Dispose() error {
	if !b.Valid() {
		return nil
	}
	if err := b.v.DeleteBuffer(b.buf, map[string]bool{"force": true}); err != nil {
		return fmt.Errorf("deleting buffer %s: %w", b.name, err)
	}
	return nil
}
