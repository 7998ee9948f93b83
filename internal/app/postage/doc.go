// Package postage provides the request carrier handed to delivery modules
// when a postage has to be computed.
//
// A RequestContext is built by the quoting service from a cart and a
// destination, then passed to a single delivery module which marks itself
// valid or not and fills in the postage, the delivery date, the delivery
// mode and any module specific data:
//
//	rc := postage.New(module, cart, postage.WithAddress(addr))
//
//	ok, err := module.IsValidDelivery(ctx, rc)
//	rc.SetValidModule(ok)
//	if ok {
//	    rc.SetPostageAmount(4.90).SetDeliveryDate(eta)
//	    if err := rc.SetDeliveryMode(domain.DeliveryModeDelivery); err != nil {
//	        return err
//	    }
//	}
//
// The destination is resolved lazily: Country and State prefer the address
// and use the fallback values only when no address is set.
//
// A RequestContext is not safe for concurrent mutation. It is used by one
// goroutine at a time for the duration of one computation.
package postage
