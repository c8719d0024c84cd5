// Package locker provides keyed mutual exclusion for short critical sections
// such as "read customer id / create at gateway / persist id".
//
// Memory serialises callers inside one process. Redis extends the guarantee
// across instances with SET NX PX and a token-checked release, so an expired
// holder can never delete a lock that was re-acquired by someone else.
//
//	release, err := l.Lock(ctx, "customer:"+accountID)
//	if err != nil {
//		return err
//	}
//	defer release()
package locker
