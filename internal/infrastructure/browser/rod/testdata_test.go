package rod

// Pages served to the browser tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	ScrollableHTML = `<!DOCTYPE html>
<html>
<body style="height: 5000px;">
	<h1 id="top">Top of Page</h1>
	<div style="margin-top: 2000px;" id="middle">Middle</div>
	<div style="margin-top: 2000px;" id="bottom">Bottom</div>
</body>
</html>`

	LoginFormHTML = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
	<form id="login" onsubmit="event.preventDefault(); document.getElementById('msg').textContent = 'Welcome back, ' + document.getElementById('email').value;">
		<label for="email">Email</label>
		<input id="email" name="email" type="email" placeholder="you@example.com" />
		<label for="password">Password</label>
		<input id="password" name="password" type="password" />
		<label for="country">Country</label>
		<select id="country" name="country">
			<option value="">Choose</option>
			<option value="us">United States</option>
			<option value="fr">France</option>
		</select>
		<button type="submit" disabled id="disabledBtn">Old</button>
		<button type="submit">Sign in</button>
	</form>
	<div id="msg"></div>
</body>
</html>`
)
