package ec2

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("ec2")

// Controller starts and stops the EC2 instance hosting an optimization engine.
type Controller struct {
	client     ec2iface.EC2API
	instanceId string
	ipAddress  string
	running    bool
	mu         sync.Mutex
}

func NewController(region string, instanceId string) (*Controller, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create ec2 session: %w", err)
	}
	return newController(ec2.New(sess), instanceId)
}

func newController(client ec2iface.EC2API, instanceId string) (*Controller, error) {
	c := &Controller{client: client, instanceId: instanceId}
	if err := c.updateState(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to read ec2 instance %s: %w", instanceId, err)
	}
	return c, nil
}

func (c *Controller) IpAddress() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ipAddress
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) updateState(ctx context.Context) error {
	instance, err := c.findInstance(ctx)
	if err != nil {
		return err
	}
	state := aws.StringValue(instance.State.Name)
	c.running = state == ec2.InstanceStateNameRunning || state == ec2.InstanceStateNamePending
	for _, networkInterface := range instance.NetworkInterfaces {
		for _, ipAddress := range networkInterface.PrivateIpAddresses {
			c.ipAddress = aws.StringValue(ipAddress.PrivateIpAddress)
		}
	}
	return nil
}

func (c *Controller) findInstance(ctx context.Context) (*ec2.Instance, error) {
	output, err := c.client.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{InstanceIds: c.instanceIds()})
	if err != nil {
		return nil, err
	}
	if len(output.Reservations) == 0 || len(output.Reservations[0].Instances) == 0 {
		return nil, errors.New("instance not found")
	}
	return output.Reservations[0].Instances[0], nil
}

// StartIfNotRunning starts the instance and refreshes its address.
func (c *Controller) StartIfNotRunning(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if _, err := c.client.StartInstancesWithContext(ctx, &ec2.StartInstancesInput{InstanceIds: c.instanceIds()}); err != nil {
		return fmt.Errorf("failed to start ec2 instance %s: %w", c.instanceId, err)
	}
	log.Infof("ec2 instance %s started", c.instanceId)
	if err := c.updateState(ctx); err != nil {
		log.Warnf("failed to refresh ec2 instance %s: %s", c.instanceId, err)
	}
	c.running = true
	return nil
}

func (c *Controller) StopIfRunning(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	if _, err := c.client.StopInstancesWithContext(ctx, &ec2.StopInstancesInput{InstanceIds: c.instanceIds()}); err != nil {
		log.Errorf("failed to stop ec2 instance %s: %s", c.instanceId, err)
		return
	}
	log.Infof("ec2 instance %s stopped", c.instanceId)
	c.running = false
}

func (c *Controller) instanceIds() []*string { return []*string{aws.String(c.instanceId)} }
