// ABOUTME: Listener client package for the capture stream
// ABOUTME: Connects, negotiates a codec and yields decoded frames
// Package client connects to a capture server and decodes its frames.
//
// Example:
//
//	c := client.NewClient(client.Config{ServerAddr: "192.168.1.20:8928", ClientID: id, Name: "kitchen"})
//	if err := c.Connect(); err != nil {
//	    return err
//	}
//	for frame := range c.Frames {
//	    out.Write(frame.Samples)
//	}
package client
